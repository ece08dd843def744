// Package rsvp holds the attendance workflow for a solo guest or a party of
// guests sharing a group id. Everything here is pure: callers load guests,
// run Step, and persist the guests listed in Outcome.Changed.
package rsvp

import (
	"errors"

	"github.com/google/uuid"

	"github.com/Kerhoff/wedding/internal/models"
)

var (
	// ErrStaleReference is returned when a guest or group id resolves to nobody
	ErrStaleReference = errors.New("rsvp: reference no longer resolves to any guest")
	// ErrPartySize is returned when a party is built from fewer than two guests
	ErrPartySize = errors.New("rsvp: a party needs at least two guests")
)

// Kind distinguishes the two shapes an Attendee can take
type Kind int

const (
	KindSolo Kind = iota + 1
	KindParty
)

func (k Kind) String() string {
	switch k {
	case KindSolo:
		return "solo"
	case KindParty:
		return "party"
	default:
		return "unknown"
	}
}

// Attendee is either Solo(guest) or Party(guests). The zero value is invalid.
type Attendee struct {
	kind    Kind
	members []*models.Guest
}

// Solo wraps a guest who responds alone.
func Solo(guest *models.Guest) Attendee {
	return Attendee{kind: KindSolo, members: []*models.Guest{guest}}
}

// Party wraps several guests responding together. Use NewAttendee to pick the
// variant from the resolved group size.
func Party(members []*models.Guest) (Attendee, error) {
	if len(members) < 2 {
		return Attendee{}, ErrPartySize
	}
	return Attendee{kind: KindParty, members: members}, nil
}

// NewAttendee chooses Solo or Party from the number of guests sharing a group.
// An empty set means the reference went stale.
func NewAttendee(members []*models.Guest) (Attendee, error) {
	switch len(members) {
	case 0:
		return Attendee{}, ErrStaleReference
	case 1:
		return Solo(members[0]), nil
	default:
		return Party(members)
	}
}

func (a Attendee) Kind() Kind { return a.kind }

func (a Attendee) IsSolo() bool { return a.kind == KindSolo }

// Members returns the guests in store order.
func (a Attendee) Members() []*models.Guest { return a.members }

// Guest returns the solo guest, or the first member of a party.
func (a Attendee) Guest() *models.Guest {
	if len(a.members) == 0 {
		return nil
	}
	return a.members[0]
}

func (a Attendee) GroupID() uuid.UUID {
	if len(a.members) == 0 {
		return uuid.Nil
	}
	return a.members[0].GroupID
}

// Member looks a guest up by id within the attendee.
func (a Attendee) Member(id int64) (*models.Guest, bool) {
	for _, m := range a.members {
		if m.ID == id {
			return m, true
		}
	}
	return nil, false
}

// Status folds the members' individual decisions into the group status.
func (a Attendee) Status() GroupStatus {
	var attending, declined int
	for _, m := range a.members {
		switch DecisionOf(m) {
		case DecisionPending:
			return StatusUndecided
		case DecisionAttending:
			attending++
		case DecisionDeclined:
			declined++
		}
	}
	switch {
	case attending > 0 && declined > 0:
		return StatusMixed
	case declined > 0:
		return StatusAllDeclined
	default:
		return StatusAllAttending
	}
}

// State derives the workflow state from stored data. An attendee only exists
// once a lookup resolved, so the lowest state reported is IdentityConfirmed.
func (a Attendee) State() State {
	if len(a.members) == 0 {
		return StateLookup
	}
	decided, responded := true, true
	for _, m := range a.members {
		if !m.HasDecided() {
			decided = false
		}
		if !m.HasResponded() {
			responded = false
		}
	}
	switch {
	case responded && decided:
		return StateDetailsCollected
	case decided:
		return StateAttendanceDeclared
	default:
		return StateIdentityConfirmed
	}
}

func (a Attendee) clone() Attendee {
	members := make([]*models.Guest, len(a.members))
	for i, m := range a.members {
		members[i] = m.Clone()
	}
	return Attendee{kind: a.kind, members: members}
}
