package models

import (
	"time"

	"github.com/google/uuid"
)

// Guest represents an invited wedding guest. Guests sharing a GroupID form a
// party that responds to the invitation together.
type Guest struct {
	ID                  int64      `json:"id" db:"id"`
	GroupID             uuid.UUID  `json:"group_id" db:"group_id"`
	FirstName           string     `json:"first_name" db:"first_name"`
	LastName            string     `json:"last_name" db:"last_name"`
	Email               string     `json:"email" db:"email"`
	Attending           *bool      `json:"attending" db:"attending"`
	DietaryRestrictions string     `json:"dietary_restrictions" db:"dietary_restrictions"`
	MessageForCouple    string     `json:"message_for_couple" db:"message_for_couple"`
	RespondedAt         *time.Time `json:"responded_at,omitempty" db:"responded_at"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at" db:"updated_at"`
}

// FullName returns the guest's full name
func (g *Guest) FullName() string {
	if g.LastName != "" {
		return g.FirstName + " " + g.LastName
	}
	return g.FirstName
}

// HasDecided returns true once the guest has said whether they attend
func (g *Guest) HasDecided() bool {
	return g.Attending != nil
}

// IsAttending returns true only for an explicit yes
func (g *Guest) IsAttending() bool {
	return g.Attending != nil && *g.Attending
}

// IsDeclined returns true only for an explicit no
func (g *Guest) IsDeclined() bool {
	return g.Attending != nil && !*g.Attending
}

// HasResponded returns true once the guest's details have been collected
func (g *Guest) HasResponded() bool {
	return g.RespondedAt != nil
}

// SetAttending records a decision. It reports whether the stored value changed.
func (g *Guest) SetAttending(attending bool) bool {
	if g.Attending != nil && *g.Attending == attending {
		return false
	}
	g.Attending = &attending
	return true
}

// Clone returns a deep copy so callers can mutate without touching the original.
func (g *Guest) Clone() *Guest {
	c := *g
	if g.Attending != nil {
		v := *g.Attending
		c.Attending = &v
	}
	if g.RespondedAt != nil {
		t := *g.RespondedAt
		c.RespondedAt = &t
	}
	return &c
}
