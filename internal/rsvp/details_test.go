package rsvp

import (
	"encoding/json"
	"testing"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr error
	}{
		{name: "plain address", email: "guest@example.com"},
		{name: "plus tag", email: "guest+rsvp@mail.example.org"},
		{name: "empty", email: "", wantErr: ErrEmailRequired},
		{name: "no at sign", email: "not-an-email", wantErr: ErrEmailInvalid},
		{name: "display name", email: "guest <guest@example.com>", wantErr: ErrEmailInvalid},
		{name: "domain without dot", email: "guest@localhost", wantErr: ErrEmailInvalid},
		{name: "trailing dot", email: "guest@example.", wantErr: ErrEmailInvalid},
		{name: "two at signs", email: "a@b@example.com", wantErr: ErrEmailInvalid},
		{name: "placeholder address", email: "anne.hanks@placeholder.com", wantErr: ErrEmailRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateEmail(tt.email); err != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, want %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Mixed.Case@Example.COM\t"); got != "mixed.case@example.com" {
		t.Errorf("NormalizeEmail() = %q", got)
	}
}

func TestParseDecision(t *testing.T) {
	tests := []struct {
		in      string
		want    Decision
		wantErr bool
	}{
		{in: "yes", want: DecisionAttending},
		{in: " No ", want: DecisionDeclined},
		{in: "", want: DecisionPending},
		{in: "maybe", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDecision(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDecision(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDecision(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDecisionsDecodeFromJSON(t *testing.T) {
	var ev DeclareAttendance
	if err := json.Unmarshal([]byte(`{"Decisions":{"4":"yes","7":"no"}}`), &ev); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if ev.Decisions[4] != DecisionAttending || ev.Decisions[7] != DecisionDeclined {
		t.Errorf("Decisions = %v", ev.Decisions)
	}
}
