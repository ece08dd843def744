package rsvp

import (
	"fmt"
	"strings"

	"github.com/Kerhoff/wedding/internal/models"
)

// State is a step of the RSVP workflow
type State int

const (
	StateLookup State = iota
	StateIdentityConfirmed
	StateAttendanceDeclared
	StateDetailsCollected
)

func (s State) String() string {
	switch s {
	case StateLookup:
		return "lookup"
	case StateIdentityConfirmed:
		return "identity-confirmed"
	case StateAttendanceDeclared:
		return "attendance-declared"
	case StateDetailsCollected:
		return "details-collected"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Decision is the per-member sub-state while attendance is being declared
type Decision int

const (
	DecisionPending Decision = iota
	DecisionAttending
	DecisionDeclined
)

// DecisionOf reads the stored decision of a guest.
func DecisionOf(g *models.Guest) Decision {
	switch {
	case g.IsAttending():
		return DecisionAttending
	case g.IsDeclined():
		return DecisionDeclined
	default:
		return DecisionPending
	}
}

// ParseDecision accepts the answers the forms submit. An empty answer is pending.
func ParseDecision(s string) (Decision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DecisionPending, nil
	case "yes", "attending", "true":
		return DecisionAttending, nil
	case "no", "declined", "false":
		return DecisionDeclined, nil
	default:
		return DecisionPending, fmt.Errorf("rsvp: unknown attendance answer %q", s)
	}
}

func (d Decision) String() string {
	switch d {
	case DecisionAttending:
		return "attending"
	case DecisionDeclined:
		return "declined"
	default:
		return "pending"
	}
}

func (d Decision) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Decision) UnmarshalText(text []byte) error {
	parsed, err := ParseDecision(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// GroupStatus is the union of the members' decisions
type GroupStatus string

const (
	StatusUndecided    GroupStatus = "undecided"
	StatusMixed        GroupStatus = "mixed"
	StatusAllAttending GroupStatus = "all-attending"
	StatusAllDeclined  GroupStatus = "all-declined"
)

// View names the screen the presentation layer should render next
type View string

const (
	ViewLookup           View = "lookup"
	ViewNotFound         View = "not-found"
	ViewDisambiguation   View = "disambiguation-needed"
	ViewConfirm          View = "confirm-needed"
	ViewAttendanceForm   View = "attendance-form"
	ViewDetailsForm      View = "details-form"
	ViewGroupDetailsForm View = "group-details-form"
	ViewDeclinedForm     View = "declined-form"
	ViewThankYou         View = "thank-you"
)
