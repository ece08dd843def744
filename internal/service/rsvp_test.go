package service

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	bbolt "go.etcd.io/bbolt"

	"github.com/Kerhoff/wedding/internal/models"
	"github.com/Kerhoff/wedding/internal/repository/bolt"
	"github.com/Kerhoff/wedding/internal/rsvp"
)

var fixedNow = time.Date(2025, 5, 17, 15, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	responses []Response
	err       error
}

func (n *recordingNotifier) NotifyResponse(_ context.Context, r Response) error {
	n.responses = append(n.responses, r)
	return n.err
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := bbolt.Open(filepath.Join(t.TempDir(), "rsvp.db"), 0o600, nil)
	if err != nil {
		t.Fatalf("open bolt: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	guests, err := bolt.NewGuestStore(db)
	if err != nil {
		t.Fatalf("NewGuestStore() error = %v", err)
	}
	stories, err := bolt.NewStoryStore(db)
	if err != nil {
		t.Fatalf("NewStoryStore() error = %v", err)
	}

	l := logrus.New()
	l.SetOutput(io.Discard)
	svc := New(l, guests, stories, nil)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func seed(t *testing.T, svc *Service, group uuid.UUID, first, last string) *models.Guest {
	t.Helper()
	g, err := svc.Guests.Create(context.Background(), &models.Guest{GroupID: group, FirstName: first, LastName: last})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return g
}

func TestLookup(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	seed(t, svc, uuid.Nil, "Alpha", "Pitt")
	seed(t, svc, uuid.Nil, "Rachel", "Rogers")
	seed(t, svc, uuid.Nil, "Rachel", "Rogers")

	tests := []struct {
		name        string
		first, last string
		want        rsvp.View
		wantMatches int
	}{
		{name: "single match", first: " alpha ", last: "PITT", want: rsvp.ViewConfirm},
		{name: "duplicates", first: "Rachel", last: "Rogers", want: rsvp.ViewDisambiguation, wantMatches: 2},
		{name: "unknown", first: "Zzz", last: "Nobody", want: rsvp.ViewNotFound},
		{name: "missing last name", first: "Alpha", last: "  ", want: rsvp.ViewLookup},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Lookup(ctx, tt.first, tt.last)
			if err != nil {
				t.Fatalf("Lookup() error = %v", err)
			}
			if res.View != tt.want {
				t.Errorf("View = %s, want %s", res.View, tt.want)
			}
			if len(res.Matches) != tt.wantMatches {
				t.Errorf("Matches = %d, want %d", len(res.Matches), tt.wantMatches)
			}
		})
	}
}

func TestSoloFlowPersists(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	notifier := &recordingNotifier{}
	svc.SetNotifier(notifier)
	echo := seed(t, svc, uuid.Nil, "Echo", "Depp")

	res, err := svc.Confirm(ctx, echo.ID, true)
	if err != nil || res.View != rsvp.ViewAttendanceForm {
		t.Fatalf("Confirm() = %+v, %v", res, err)
	}
	if res.Party != nil {
		t.Errorf("solo guest returned a party: %v", res.Party)
	}

	res, err = svc.DeclareAttendance(ctx, GuestSubject(echo.ID), map[int64]rsvp.Decision{echo.ID: rsvp.DecisionAttending})
	if err != nil || res.View != rsvp.ViewDetailsForm {
		t.Fatalf("DeclareAttendance() = %+v, %v", res, err)
	}

	res, err = svc.SubmitDetails(ctx, GuestSubject(echo.ID), map[int64]rsvp.Details{
		echo.ID: {Email: "Echo@Example.com", DietaryRestrictions: "vegan"},
	})
	if err != nil || res.View != rsvp.ViewThankYou {
		t.Fatalf("SubmitDetails() = %+v, %v", res, err)
	}

	stored, err := svc.Guests.GetByID(ctx, echo.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if !stored.IsAttending() || stored.Email != "echo@example.com" || stored.DietaryRestrictions != "vegan" {
		t.Errorf("stored guest = %+v", stored)
	}
	if stored.RespondedAt == nil || !stored.RespondedAt.Equal(fixedNow) {
		t.Errorf("RespondedAt = %v, want %v", stored.RespondedAt, fixedNow)
	}
	if len(notifier.responses) != 1 || notifier.responses[0].Status != rsvp.StatusAllAttending {
		t.Errorf("notifications = %+v", notifier.responses)
	}

	res, err = svc.Confirm(ctx, echo.ID, true)
	if err != nil || res.View != rsvp.ViewThankYou {
		t.Fatalf("re-confirm = %+v, %v", res, err)
	}
	if len(notifier.responses) != 1 {
		t.Errorf("re-confirm sent another notification")
	}
}

func TestGroupFlowThroughAnyMember(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	group := uuid.New()
	golf := seed(t, svc, group, "Golf", "Hanks")
	hotel := seed(t, svc, group, "Hotel", "Hanks")

	res, err := svc.Confirm(ctx, hotel.ID, true)
	if err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if len(res.Party) != 2 || res.Party[0].ID != golf.ID {
		t.Fatalf("Party = %v, want both Hanks in id order", res.Party)
	}

	res, err = svc.DeclareAttendance(ctx, GroupSubject(group), map[int64]rsvp.Decision{
		golf.ID:  rsvp.DecisionAttending,
		hotel.ID: rsvp.DecisionDeclined,
	})
	if err != nil || res.View != rsvp.ViewGroupDetailsForm || res.Status != rsvp.StatusMixed {
		t.Fatalf("DeclareAttendance() = %+v, %v", res, err)
	}

	res, err = svc.SubmitDetails(ctx, GroupSubject(group), map[int64]rsvp.Details{
		golf.ID:  {Email: "bad"},
		hotel.ID: {MessageForCouple: "Sorry"},
	})
	if err != nil || res.View != rsvp.ViewGroupDetailsForm || res.Errors == nil {
		t.Fatalf("invalid SubmitDetails() = %+v, %v", res, err)
	}
	stored, _ := svc.Guests.GetByID(ctx, hotel.ID)
	if stored.MessageForCouple != "" || stored.HasResponded() {
		t.Errorf("rejected submission wrote guest %d: %+v", hotel.ID, stored)
	}
}

func TestStaleReferenceReturnsToLookup(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	g := seed(t, svc, uuid.Nil, "Lima", "Stale")
	if err := svc.Guests.Delete(ctx, g.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	for name, call := range map[string]func() (*Result, error){
		"confirm": func() (*Result, error) { return svc.Confirm(ctx, g.ID, true) },
		"select":  func() (*Result, error) { return svc.SelectGuest(ctx, g.ID) },
		"group":   func() (*Result, error) { return svc.Status(ctx, GroupSubject(g.GroupID)) },
	} {
		res, err := call()
		if err != nil {
			t.Fatalf("%s error = %v", name, err)
		}
		if res.View != rsvp.ViewLookup || res.Notice != NoticeStale {
			t.Errorf("%s = %+v, want lookup with stale notice", name, res)
		}
	}
}

func TestNotifierFailureIsNotSurfaced(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	svc.SetNotifier(&recordingNotifier{err: errors.New("telegram down")})
	g := seed(t, svc, uuid.Nil, "Mike", "Down")

	if _, err := svc.DeclareAttendance(ctx, GuestSubject(g.ID), map[int64]rsvp.Decision{g.ID: rsvp.DecisionDeclined}); err != nil {
		t.Fatalf("DeclareAttendance() error = %v", err)
	}
	res, err := svc.SubmitDetails(ctx, GuestSubject(g.ID), nil)
	if err != nil {
		t.Fatalf("SubmitDetails() error = %v", err)
	}
	if res.View != rsvp.ViewThankYou {
		t.Errorf("View = %s, want %s", res.View, rsvp.ViewThankYou)
	}
}
