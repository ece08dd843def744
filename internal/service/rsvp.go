package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/wedding/internal/models"
	"github.com/Kerhoff/wedding/internal/repository"
	"github.com/Kerhoff/wedding/internal/rsvp"
)

// NoticeStale is shown when a guest or group id no longer resolves.
const NoticeStale = "We could not find that invitation anymore. Please look yourself up again."

// Subject addresses the workflow either through one guest or a whole group.
// A guest always acts for every guest sharing their group.
type Subject struct {
	GuestID int64
	GroupID uuid.UUID
}

func GuestSubject(id int64) Subject { return Subject{GuestID: id} }

func GroupSubject(id uuid.UUID) Subject { return Subject{GroupID: id} }

func (s Subject) String() string {
	if s.GuestID != 0 {
		return fmt.Sprintf("guest %d", s.GuestID)
	}
	return "group " + s.GroupID.String()
}

// Result tells the presentation layer what to render. It is returned with a
// nil error for every guest-facing outcome, including validation failures,
// misses and stale references; the error is reserved for store failures.
type Result struct {
	View      rsvp.View              `json:"view"`
	Guest     *models.Guest          `json:"guest,omitempty"`
	Party     []*models.Guest        `json:"party,omitempty"`
	GroupID   *uuid.UUID             `json:"group_id,omitempty"`
	Status    rsvp.GroupStatus       `json:"status,omitempty"`
	Matches   []*models.Guest        `json:"matches,omitempty"`
	Errors    *rsvp.ValidationError  `json:"errors,omitempty"`
	Submitted map[int64]rsvp.Details `json:"submitted,omitempty"`
	Notice    string                 `json:"notice,omitempty"`
}

// Response describes a completed response for notifiers.
type Response struct {
	GroupID uuid.UUID
	Status  rsvp.GroupStatus
	Guests  []*models.Guest
}

// Lookup finds guests by exact, case-insensitive first and last name.
func (s *Service) Lookup(ctx context.Context, firstName, lastName string) (*Result, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" || lastName == "" {
		return s.result(&Result{
			View:   rsvp.ViewLookup,
			Errors: rsvp.NewFormError(rsvp.FieldName, "please enter your first and last name"),
		}), nil
	}

	guests, err := s.Guests.FindByName(ctx, firstName, lastName)
	if err != nil {
		return nil, fmt.Errorf("failed to look up guest %q %q: %w", firstName, lastName, err)
	}

	log := s.logger.WithFields(logrus.Fields{"first_name": firstName, "last_name": lastName, "matches": len(guests)})
	switch len(guests) {
	case 0:
		log.Info("Guest lookup found nobody")
		s.metrics.ObserveLookup("not-found")
		return s.result(&Result{View: rsvp.ViewNotFound}), nil
	case 1:
		log.Debug("Guest lookup matched")
		s.metrics.ObserveLookup("found")
		return s.result(&Result{View: rsvp.ViewConfirm, Guest: guests[0]}), nil
	default:
		log.Info("Guest lookup is ambiguous")
		s.metrics.ObserveLookup("ambiguous")
		return s.result(&Result{View: rsvp.ViewDisambiguation, Matches: guests}), nil
	}
}

// SelectGuest picks one of several lookup matches and asks for confirmation.
func (s *Service) SelectGuest(ctx context.Context, guestID int64) (*Result, error) {
	guest, err := s.Guests.GetByID(ctx, guestID)
	if errors.Is(err, repository.ErrNotFound) {
		return s.stale(GuestSubject(guestID)), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guest %d: %w", guestID, err)
	}
	return s.result(&Result{View: rsvp.ViewConfirm, Guest: guest}), nil
}

// Confirm answers the identity prompt for a guest.
func (s *Service) Confirm(ctx context.Context, guestID int64, yes bool) (*Result, error) {
	return s.apply(ctx, GuestSubject(guestID), rsvp.ConfirmIdentity{Yes: yes})
}

// DeclareAttendance records attendance decisions for the subject's party.
func (s *Service) DeclareAttendance(ctx context.Context, subject Subject, decisions map[int64]rsvp.Decision) (*Result, error) {
	return s.apply(ctx, subject, rsvp.DeclareAttendance{Decisions: decisions})
}

// SubmitDetails records the details forms for the subject's party.
func (s *Service) SubmitDetails(ctx context.Context, subject Subject, details map[int64]rsvp.Details) (*Result, error) {
	return s.apply(ctx, subject, rsvp.SubmitDetails{Details: details})
}

// Status re-renders the screen the stored state calls for.
func (s *Service) Status(ctx context.Context, subject Subject) (*Result, error) {
	return s.apply(ctx, subject, rsvp.Show{})
}

// resolve loads the attendee for a subject. A nil attendee with a nil error
// means the subject went stale.
func (s *Service) resolve(ctx context.Context, subject Subject) (*rsvp.Attendee, error) {
	groupID := subject.GroupID
	if subject.GuestID != 0 {
		guest, err := s.Guests.GetByID(ctx, subject.GuestID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get guest %d: %w", subject.GuestID, err)
		}
		groupID = guest.GroupID
	}

	members, err := s.Guests.FindByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load group %s: %w", groupID, err)
	}
	attendee, err := rsvp.NewAttendee(members)
	if errors.Is(err, rsvp.ErrStaleReference) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &attendee, nil
}

func (s *Service) apply(ctx context.Context, subject Subject, ev rsvp.Event) (*Result, error) {
	attendee, err := s.resolve(ctx, subject)
	if err != nil {
		return nil, err
	}
	if attendee == nil {
		return s.stale(subject), nil
	}

	next, out := rsvp.Step(*attendee, ev, s.now())
	for _, g := range out.Changed {
		if _, err := s.Guests.Update(ctx, g); err != nil {
			return nil, fmt.Errorf("failed to save response for guest %d: %w", g.ID, err)
		}
	}

	log := s.logger.WithFields(logrus.Fields{
		"subject": subject.String(),
		"event":   fmt.Sprintf("%T", ev),
		"view":    out.View,
		"changed": len(out.Changed),
	})
	if out.Errors != nil {
		log.WithField("errors", out.Errors.Error()).Info("RSVP submission needs corrections")
	} else {
		log.Debug("RSVP step applied")
	}

	status := next.Status()
	if out.View == rsvp.ViewThankYou && len(out.Changed) > 0 {
		s.metrics.ObserveResponse(string(status))
		s.notify(ctx, Response{GroupID: next.GroupID(), Status: status, Guests: next.Members()})
	}

	groupID := next.GroupID()
	res := &Result{
		View:      out.View,
		Guest:     next.Guest(),
		GroupID:   &groupID,
		Status:    status,
		Errors:    out.Errors,
		Submitted: out.Submitted,
	}
	if !next.IsSolo() {
		res.Party = next.Members()
	}
	return s.result(res), nil
}

func (s *Service) stale(subject Subject) *Result {
	s.logger.WithField("subject", subject.String()).Warn("RSVP reference no longer resolves")
	return s.result(&Result{View: rsvp.ViewLookup, Notice: NoticeStale})
}

func (s *Service) result(r *Result) *Result {
	s.metrics.ObserveView(string(r.View))
	return r
}

func (s *Service) notify(ctx context.Context, response Response) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyResponse(ctx, response); err != nil {
		s.logger.WithFields(logrus.Fields{
			"group_id": response.GroupID.String(),
			"error":    err,
		}).Warn("Failed to send response notification")
	}
}
