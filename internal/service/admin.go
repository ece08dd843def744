package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/wedding/internal/models"
	"github.com/Kerhoff/wedding/internal/repository"
	"github.com/Kerhoff/wedding/internal/rsvp"
)

// GuestOverride is an admin correction of a guest record. Nil fields are
// left as stored.
type GuestOverride struct {
	FirstName           *string    `json:"first_name"`
	LastName            *string    `json:"last_name"`
	GroupID             *uuid.UUID `json:"group_id"`
	Attending           *bool      `json:"attending"`
	ClearAttending      bool       `json:"clear_attending"`
	Email               *string    `json:"email"`
	DietaryRestrictions *string    `json:"dietary_restrictions"`
	MessageForCouple    *string    `json:"message_for_couple"`
}

// Party is a group of guests as the admin surfaces show it.
type Party struct {
	GroupID uuid.UUID        `json:"group_id"`
	Status  rsvp.GroupStatus `json:"status"`
	State   string           `json:"state"`
	Guests  []*models.Guest  `json:"guests"`
}

// Summary counts responses across every guest.
type Summary struct {
	Guests    int           `json:"guests"`
	Groups    int           `json:"groups"`
	Attending int           `json:"attending"`
	Declined  int           `json:"declined"`
	Pending   int           `json:"pending"`
	Responded int           `json:"responded"`
	Dietary   []DietaryNote `json:"dietary,omitempty"`
}

// DietaryNote is one attending guest's dietary restriction.
type DietaryNote struct {
	Name         string `json:"name"`
	Restrictions string `json:"restrictions"`
}

func (s *Service) ListGuests(ctx context.Context) ([]*models.Guest, error) {
	guests, err := s.Guests.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list guests: %w", err)
	}
	return guests, nil
}

// GetGuest returns repository.ErrNotFound for unknown ids.
func (s *Service) GetGuest(ctx context.Context, id int64) (*models.Guest, error) {
	guest, err := s.Guests.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get guest %d: %w", id, err)
	}
	return guest, nil
}

// FindGuests matches query against full names, case-insensitively.
func (s *Service) FindGuests(ctx context.Context, query string) ([]*models.Guest, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	guests, err := s.ListGuests(ctx)
	if err != nil {
		return nil, err
	}
	if query == "" {
		return nil, nil
	}

	var found []*models.Guest
	for _, g := range guests {
		if strings.Contains(strings.ToLower(g.FullName()), query) {
			found = append(found, g)
		}
	}
	return found, nil
}

// PartyOf returns the whole group a subject belongs to.
func (s *Service) PartyOf(ctx context.Context, subject Subject) (*Party, error) {
	attendee, err := s.resolve(ctx, subject)
	if err != nil {
		return nil, err
	}
	if attendee == nil {
		return nil, fmt.Errorf("%s: %w", subject, repository.ErrNotFound)
	}
	return &Party{
		GroupID: attendee.GroupID(),
		Status:  attendee.Status(),
		State:   attendee.State().String(),
		Guests:  attendee.Members(),
	}, nil
}

// OverrideGuest applies an admin correction. A non-empty email must be valid,
// but attending guests may be left without one.
func (s *Service) OverrideGuest(ctx context.Context, id int64, o GuestOverride) (*models.Guest, *rsvp.ValidationError, error) {
	guest, err := s.GetGuest(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	var email string
	if o.Email != nil {
		email = rsvp.NormalizeEmail(*o.Email)
		if email != "" {
			if err := rsvp.ValidateEmail(email); err != nil {
				return nil, rsvp.NewFormError(rsvp.FieldEmail, err.Error()), nil
			}
		}
	}

	if o.FirstName != nil || o.LastName != nil || o.GroupID != nil {
		if o.FirstName != nil {
			guest.FirstName = strings.TrimSpace(*o.FirstName)
		}
		if o.LastName != nil {
			guest.LastName = strings.TrimSpace(*o.LastName)
		}
		if o.GroupID != nil {
			guest.GroupID = *o.GroupID
		}
		if guest.FirstName == "" || guest.LastName == "" || guest.GroupID == uuid.Nil {
			return nil, rsvp.NewFormError(rsvp.FieldName, "first name, last name and group are required"), nil
		}
		if guest, err = s.Guests.UpdateProfile(ctx, guest); err != nil {
			return nil, nil, fmt.Errorf("failed to update guest %d profile: %w", id, err)
		}
	}

	switch {
	case o.ClearAttending:
		guest.Attending = nil
		guest.RespondedAt = nil
	case o.Attending != nil:
		if guest.SetAttending(*o.Attending) {
			guest.RespondedAt = nil
		}
	}
	if o.Email != nil {
		guest.Email = email
	}
	if o.DietaryRestrictions != nil {
		guest.DietaryRestrictions = *o.DietaryRestrictions
	}
	if o.MessageForCouple != nil {
		guest.MessageForCouple = *o.MessageForCouple
	}

	guest, err = s.Guests.Update(ctx, guest)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to update guest %d: %w", id, err)
	}
	s.logger.WithFields(logrus.Fields{"guest_id": id}).Info("Guest response overridden by admin")
	return guest, nil, nil
}

// Summary aggregates every guest's response.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	guests, err := s.ListGuests(ctx)
	if err != nil {
		return nil, err
	}

	sum := &Summary{Guests: len(guests)}
	groups := make(map[uuid.UUID]struct{})
	for _, g := range guests {
		groups[g.GroupID] = struct{}{}
		switch rsvp.DecisionOf(g) {
		case rsvp.DecisionAttending:
			sum.Attending++
			if g.DietaryRestrictions != "" {
				sum.Dietary = append(sum.Dietary, DietaryNote{Name: g.FullName(), Restrictions: g.DietaryRestrictions})
			}
		case rsvp.DecisionDeclined:
			sum.Declined++
		default:
			sum.Pending++
		}
		if g.HasResponded() {
			sum.Responded++
		}
	}
	sum.Groups = len(groups)
	sort.Slice(sum.Dietary, func(i, j int) bool { return sum.Dietary[i].Name < sum.Dietary[j].Name })
	return sum, nil
}

// IsNotFound reports whether err comes from a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
