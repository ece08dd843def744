package guestimport

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	bbolt "go.etcd.io/bbolt"

	"github.com/Kerhoff/wedding/internal/models"
	"github.com/Kerhoff/wedding/internal/repository/bolt"
)

func newTestImporter(t *testing.T) (*Importer, *bolt.GuestStore) {
	t.Helper()
	db, err := bbolt.Open(filepath.Join(t.TempDir(), "import.db"), 0o600, nil)
	if err != nil {
		t.Fatalf("open bolt: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	guests, err := bolt.NewGuestStore(db)
	if err != nil {
		t.Fatal(err)
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return New(guests, l), guests
}

func TestReadCSV(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []Row
		wantErr bool
	}{
		{
			name:  "with bom",
			input: "\ufeffFirst Name,Last Name\nKelly, Throckmorton \n",
			want:  []Row{{FirstName: "Kelly", LastName: "Throckmorton"}},
		},
		{
			name:  "extra columns and blank rows",
			input: "Table,Last Name,First Name\n4,Miller,Mary Anne\n,,\n5,Fink,Rachel\n",
			want:  []Row{{FirstName: "Mary Anne", LastName: "Miller"}, {FirstName: "Rachel", LastName: "Fink"}},
		},
		{name: "missing column", input: "Name\nKelly\n", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadCSV(strings.NewReader(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ReadCSV() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ReadCSV() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("row %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLoadGroupsFamiliesAndSkipsExisting(t *testing.T) {
	ctx := context.Background()
	im, guests := newTestImporter(t)

	groups, err := ReadGroupings(strings.NewReader("padgett:\n  - Kathy Padgett\n  - Bobby Padgett\n"))
	if err != nil {
		t.Fatalf("ReadGroupings() error = %v", err)
	}
	rows := []Row{
		{FirstName: "Kathy", LastName: "Padgett"},
		{FirstName: "Bobby", LastName: "Padgett"},
		{FirstName: "Alpha", LastName: "Pitt"},
	}

	report, err := im.Load(ctx, rows, groups)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if report.Created != 3 || report.Existing != 0 {
		t.Errorf("first Load() report = %+v", report)
	}

	report, err = im.Load(ctx, rows, groups)
	if err != nil {
		t.Fatalf("second Load() error = %v", err)
	}
	if report.Created != 0 || report.Existing != 3 {
		t.Errorf("second Load() report = %+v, want all existing", report)
	}

	kathy, _ := guests.FindByName(ctx, "Kathy", "Padgett")
	bobby, _ := guests.FindByName(ctx, "Bobby", "Padgett")
	alpha, _ := guests.FindByName(ctx, "Alpha", "Pitt")
	if kathy[0].GroupID != bobby[0].GroupID {
		t.Error("family members got different groups")
	}
	if alpha[0].GroupID == kathy[0].GroupID || alpha[0].GroupID == uuid.Nil {
		t.Errorf("solo guest group = %s", alpha[0].GroupID)
	}
}

func TestLoadReportsEveryBadRow(t *testing.T) {
	im, guests := newTestImporter(t)

	rows := []Row{{FirstName: "Only"}, {FirstName: "Good", LastName: "Row"}, {LastName: "Surname"}}
	report, err := im.Load(context.Background(), rows, nil)
	if err == nil {
		t.Fatal("Load() accepted rows without names")
	}
	if got := strings.Count(err.Error(), "first and last name are required"); got != 2 {
		t.Errorf("error reports %d rows, want 2: %v", got, err)
	}
	if report.Created != 1 {
		t.Errorf("Created = %d, want 1", report.Created)
	}
	all, _ := guests.List(context.Background())
	if len(all) != 1 {
		t.Errorf("stored %d guests, want 1", len(all))
	}
}

func TestGroupingsRejectDuplicateMembers(t *testing.T) {
	groups := Groupings{"a": {"Rachel Fink"}, "b": {"rachel fink"}}
	if _, err := groups.assign(); err == nil {
		t.Fatal("assign() accepted a guest in two families")
	}
}

func TestRegroup(t *testing.T) {
	ctx := context.Background()
	im, guests := newTestImporter(t)
	liz, _ := im.Add(ctx, Row{FirstName: "Liz", LastName: "Throckmorton"}, uuid.Nil)
	gary, _ := im.Add(ctx, Row{FirstName: "Gary", LastName: "Throckmorton"}, uuid.Nil)
	if liz.GroupID == gary.GroupID {
		t.Fatal("Add() reused a group id")
	}

	group, err := im.Regroup(ctx, uuid.Nil, []Row{{FirstName: "Liz", LastName: "Throckmorton"}, {FirstName: "Gary", LastName: "Throckmorton"}})
	if err != nil {
		t.Fatalf("Regroup() error = %v", err)
	}
	members, _ := guests.FindByGroup(ctx, group)
	if len(members) != 2 {
		t.Errorf("group has %d members, want 2", len(members))
	}

	if _, err := im.Regroup(ctx, group, []Row{{FirstName: "Liz", LastName: "Throckmorton"}, {FirstName: "No", LastName: "Body"}}); err == nil {
		t.Fatal("Regroup() accepted an unknown guest")
	}
}

func TestFixEmails(t *testing.T) {
	ctx := context.Background()
	im, guests := newTestImporter(t)
	blank, _ := guests.Create(ctx, &models.Guest{GroupID: uuid.New(), FirstName: "Mary Anne", LastName: "Throckmorton-Michaud"})
	kept, _ := guests.Create(ctx, &models.Guest{GroupID: uuid.New(), FirstName: "Kept", LastName: "Email", Email: "kept@example.com"})

	report, err := im.FixEmails(ctx)
	if err != nil {
		t.Fatalf("FixEmails() error = %v", err)
	}
	if report.Updated != 1 {
		t.Errorf("Updated = %d, want 1", report.Updated)
	}

	got, _ := guests.GetByID(ctx, blank.ID)
	if want := "mary.anne.throckmorton.michaud@placeholder.com"; got.Email != want {
		t.Errorf("email = %q, want %q", got.Email, want)
	}
	got, _ = guests.GetByID(ctx, kept.ID)
	if got.Email != "kept@example.com" {
		t.Errorf("existing email overwritten: %q", got.Email)
	}
}

func TestPlaceholderEmail(t *testing.T) {
	tests := []struct {
		first, last, want string
	}{
		{"Kelly", "Throckmorton", "kelly.throckmorton@placeholder.com"},
		{"O'Brien", "D'Angelo", "obrien.dangelo@placeholder.com"},
		{" Mary  Anne ", "Smith-Jones", "mary.anne.smith.jones@placeholder.com"},
	}
	for _, tt := range tests {
		if got := PlaceholderEmail(tt.first, tt.last); got != tt.want {
			t.Errorf("PlaceholderEmail(%q, %q) = %q, want %q", tt.first, tt.last, got, tt.want)
		}
	}
}

func TestParseName(t *testing.T) {
	tests := []struct {
		in      string
		want    Row
		wantErr bool
	}{
		{in: "Kelly Throckmorton", want: Row{FirstName: "Kelly", LastName: "Throckmorton"}},
		{in: " Mary   Anne Miller ", want: Row{FirstName: "Mary Anne", LastName: "Miller"}},
		{in: "Cher", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseName(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseName(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseName(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}
