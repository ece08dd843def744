package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/wedding/internal/storage"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestGuestCommandsAgainstBolt(t *testing.T) {
	dir := t.TempDir()
	dbURL := "bolt://" + filepath.Join(dir, "cli.db")
	csvPath := filepath.Join(dir, "guests.csv")
	groupsPath := filepath.Join(dir, "groups.yaml")
	if err := os.WriteFile(csvPath, []byte("First Name,Last Name\nLiz,Throckmorton\nGary,Throckmorton\nCliff,Throckmorton\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(groupsPath, []byte("liz_gary: [Liz Throckmorton, Gary Throckmorton]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "--database-url", dbURL, "guests", "load", "--csv", csvPath, "--groups", groupsPath)
	if err != nil {
		t.Fatalf("guests load error = %v (%s)", err, out)
	}
	if !strings.Contains(out, "Added 3 guests") {
		t.Errorf("guests load output = %q", out)
	}

	if out, err := run(t, "--database-url", dbURL, "guests", "add", "--first", "Mary", "--last", "Miller"); err != nil {
		t.Fatalf("guests add error = %v (%s)", err, out)
	}
	if out, err := run(t, "--database-url", dbURL, "guests", "regroup", "Cliff Throckmorton", "Mary Miller"); err != nil {
		t.Fatalf("guests regroup error = %v (%s)", err, out)
	}
	out, err = run(t, "--database-url", dbURL, "guests", "fix-emails")
	if err != nil || !strings.Contains(out, "Updated 4") {
		t.Fatalf("guests fix-emails = %q, %v", out, err)
	}
	if out, err := run(t, "--database-url", dbURL, "stories", "add", "--title", "We met", "--date", "2019-06-01"); err != nil {
		t.Fatalf("stories add error = %v (%s)", err, out)
	}

	l := logrus.New()
	l.SetLevel(logrus.ErrorLevel)
	store, err := storage.Open(context.Background(), dbURL, l)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	cliff, _ := store.Guests.FindByName(context.Background(), "Cliff", "Throckmorton")
	mary, _ := store.Guests.FindByName(context.Background(), "Mary", "Miller")
	liz, _ := store.Guests.FindByName(context.Background(), "Liz", "Throckmorton")
	if cliff[0].GroupID != mary[0].GroupID || cliff[0].GroupID == liz[0].GroupID {
		t.Errorf("regroup did not move Cliff and Mary together")
	}
	if liz[0].Email != "liz.throckmorton@placeholder.com" {
		t.Errorf("email = %q", liz[0].Email)
	}
	stories, _ := store.Stories.List(context.Background())
	if len(stories) != 1 {
		t.Errorf("stories = %d, want 1", len(stories))
	}
}

func TestCommandValidation(t *testing.T) {
	dbURL := "bolt://" + filepath.Join(t.TempDir(), "cli.db")
	tests := []struct {
		name string
		args []string
	}{
		{name: "bad group id", args: []string{"--database-url", dbURL, "guests", "add", "--first", "A", "--last", "B", "--group", "nope"}},
		{name: "bad story date", args: []string{"--database-url", dbURL, "stories", "add", "--title", "T", "--date", "June"}},
		{name: "single word regroup", args: []string{"--database-url", dbURL, "guests", "regroup", "Cher"}},
		{name: "bolt migrate down", args: []string{"--database-url", dbURL, "migrate", "down"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, tt.args...); err == nil {
				t.Fatal("command succeeded, want error")
			}
		})
	}
}
