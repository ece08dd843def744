package rsvp

import (
	"time"

	"github.com/Kerhoff/wedding/internal/models"
)

// Event is an input to Step
type Event interface {
	isEvent()
}

// ConfirmIdentity answers the "is this you?" prompt.
type ConfirmIdentity struct {
	Yes bool
}

// DeclareAttendance carries one decision per member. Members left out, or
// sent as DecisionPending, keep their stored decision.
type DeclareAttendance struct {
	Decisions map[int64]Decision
}

// SubmitDetails carries the details forms keyed by guest id. A member who
// already responded and is left out keeps the stored details.
type SubmitDetails struct {
	Details map[int64]Details
}

// Show re-renders whatever the stored state calls for.
type Show struct{}

func (ConfirmIdentity) isEvent()   {}
func (DeclareAttendance) isEvent() {}
func (SubmitDetails) isEvent()     {}
func (Show) isEvent()              {}

// Outcome is the result of one Step. Changed lists the members whose stored
// fields differ from the input and must be persisted, in party order.
// Errors is nil when the submission was accepted in full.
type Outcome struct {
	View      View
	Changed   []*models.Guest
	Errors    *ValidationError
	Submitted map[int64]Details
}

// Step advances the workflow by one event. The input attendee is never
// mutated; on a rejected submission the returned attendee equals the input.
func Step(a Attendee, ev Event, now time.Time) (Attendee, Outcome) {
	next := a.clone()

	switch ev := ev.(type) {
	case ConfirmIdentity:
		if !ev.Yes {
			return next, Outcome{View: ViewLookup}
		}
		return next, Outcome{View: next.CurrentView()}

	case DeclareAttendance:
		if next.State() == StateDetailsCollected {
			return next, Outcome{View: ViewThankYou}
		}
		return declare(a, next, ev.Decisions)

	case SubmitDetails:
		if next.State() == StateDetailsCollected {
			return next, Outcome{View: ViewThankYou}
		}
		return submit(a, next, ev.Details, now)
	}

	return next, Outcome{View: next.CurrentView()}
}

// CurrentView is the screen the stored state resumes at once identity is
// confirmed.
func (a Attendee) CurrentView() View {
	switch a.State() {
	case StateDetailsCollected:
		return ViewThankYou
	case StateAttendanceDeclared:
		return a.detailsView()
	default:
		return ViewAttendanceForm
	}
}

func (a Attendee) detailsView() View {
	if a.IsSolo() {
		if a.Guest().IsAttending() {
			return ViewDetailsForm
		}
		return ViewDeclinedForm
	}
	if a.Status() == StatusAllDeclined {
		return ViewDeclinedForm
	}
	return ViewGroupDetailsForm
}

func (a Attendee) foreign(verr *ValidationError, ids []int64) {
	for _, id := range ids {
		if _, ok := a.Member(id); !ok {
			verr.add(id, FieldGuest, "guest is not part of this party")
		}
	}
}

func declare(prev, next Attendee, decisions map[int64]Decision) (Attendee, Outcome) {
	verr := &ValidationError{}
	ids := make([]int64, 0, len(decisions))
	for id := range decisions {
		ids = append(ids, id)
	}
	next.foreign(verr, ids)
	if !verr.empty() {
		return prev, Outcome{View: ViewAttendanceForm, Errors: verr}
	}

	var changed []*models.Guest
	for _, m := range next.members {
		var flipped bool
		switch decisions[m.ID] {
		case DecisionAttending:
			flipped = m.SetAttending(true)
		case DecisionDeclined:
			flipped = m.SetAttending(false)
		default:
			continue
		}
		if !flipped {
			continue
		}
		// details collected under the old answer no longer apply
		m.RespondedAt = nil
		changed = append(changed, m)
	}

	if next.State() == StateIdentityConfirmed {
		for _, m := range next.members {
			if !m.HasDecided() {
				verr.add(m.ID, FieldAttending, "please let us know whether this guest can attend")
			}
		}
		return next, Outcome{View: ViewAttendanceForm, Changed: changed, Errors: verr}
	}

	return next, Outcome{View: next.detailsView(), Changed: changed}
}

func submit(prev, next Attendee, details map[int64]Details, now time.Time) (Attendee, Outcome) {
	verr := &ValidationError{}
	if next.State() != StateAttendanceDeclared {
		verr.addForm(FieldAttending, "attendance must be declared for every guest first")
		return prev, Outcome{View: ViewAttendanceForm, Errors: verr, Submitted: details}
	}

	ids := make([]int64, 0, len(details))
	for id := range details {
		ids = append(ids, id)
	}
	next.foreign(verr, ids)
	if !verr.empty() {
		return prev, Outcome{View: next.detailsView(), Errors: verr, Submitted: details}
	}

	var changed []*models.Guest
	for _, m := range next.members {
		d, ok := details[m.ID]
		if !ok {
			if m.HasResponded() {
				continue
			}
			if m.IsAttending() {
				verr.add(m.ID, FieldEmail, ErrEmailRequired.Error())
				continue
			}
			d = Details{MessageForCouple: m.MessageForCouple}
		}
		if err := d.apply(m); err != nil {
			verr.add(m.ID, FieldEmail, err.Error())
			continue
		}
		stamp := now
		m.RespondedAt = &stamp
		changed = append(changed, m)
	}

	if !verr.empty() {
		return prev, Outcome{View: prev.detailsView(), Errors: verr, Submitted: details}
	}
	return next, Outcome{View: ViewThankYou, Changed: changed}
}
