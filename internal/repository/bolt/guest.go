// Package bolt stores guests and story entries in a single bbolt file. It
// backs local development and tests; production runs on postgres.
package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Kerhoff/wedding/internal/models"
	"github.com/Kerhoff/wedding/internal/repository"
)

const bucketGuests = "guests"

// NewGuestStore creates the guest bucket if needed and returns the store.
func NewGuestStore(db *bolt.DB) (*GuestStore, error) {
	return &GuestStore{db: db}, db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketGuests))
		return err
	})
}

// GuestStore implements repository.GuestAdminRepository on bbolt. Keys are
// big-endian IDs, so cursor order is ID order.
type GuestStore struct {
	db *bolt.DB
}

var _ repository.GuestAdminRepository = (*GuestStore)(nil)

func itob(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

func (s *GuestStore) Create(ctx context.Context, guest *models.Guest) (*models.Guest, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "CreateGuest")
	defer span.End()

	if guest.GroupID == uuid.Nil {
		span.AddEvent("group id is nil, generate a new one")
		guest.GroupID = uuid.New()
	}
	now := time.Now()
	guest.CreatedAt = now
	guest.UpdatedAt = now

	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketGuests))
		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		guest.ID = int64(seq)

		j, err := json.Marshal(guest)
		if err != nil {
			return err
		}
		return bucket.Put(itob(guest.ID), j)
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create guest: %w", err)
	}

	return guest, nil
}

// filter walks every guest in ID order and keeps those matching keep.
func (s *GuestStore) filter(span trace.Span, keep func(*models.Guest) bool) ([]*models.Guest, error) {
	var guests []*models.Guest
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketGuests)).ForEach(func(_, v []byte) error {
			guest := &models.Guest{}
			if err := json.Unmarshal(v, guest); err != nil {
				span.RecordError(err)
				return err
			}
			if keep(guest) {
				guests = append(guests, guest)
			}
			return nil
		})
	})
	span.SetAttributes(attribute.Int("guests.count", len(guests)))
	return guests, err
}

func (s *GuestStore) FindByName(ctx context.Context, firstName, lastName string) ([]*models.Guest, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "FindGuestsByName")
	defer span.End()

	guests, err := s.filter(span, func(g *models.Guest) bool {
		return strings.EqualFold(g.FirstName, firstName) && strings.EqualFold(g.LastName, lastName)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find guests by name: %w", err)
	}
	return guests, nil
}

func (s *GuestStore) FindByGroup(ctx context.Context, groupID uuid.UUID) ([]*models.Guest, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "FindGuestsByGroup")
	defer span.End()

	guests, err := s.filter(span, func(g *models.Guest) bool {
		return g.GroupID == groupID
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find guests by group: %w", err)
	}
	return guests, nil
}

func (s *GuestStore) List(ctx context.Context) ([]*models.Guest, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "ListGuests")
	defer span.End()

	guests, err := s.filter(span, func(*models.Guest) bool { return true })
	if err != nil {
		return nil, fmt.Errorf("failed to list guests: %w", err)
	}
	return guests, nil
}

func (s *GuestStore) GetByID(ctx context.Context, id int64) (*models.Guest, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "GetGuestByID")
	defer span.End()

	guest := &models.Guest{}
	err := s.db.View(func(tx *bolt.Tx) error {
		res := tx.Bucket([]byte(bucketGuests)).Get(itob(id))
		if res == nil {
			return fmt.Errorf("guest %d: %w", id, repository.ErrNotFound)
		}
		return json.Unmarshal(res, guest)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return guest, nil
}

// modify loads the stored guest, applies fn and writes it back in one
// read-write transaction.
func (s *GuestStore) modify(id int64, fn func(stored *models.Guest)) (*models.Guest, error) {
	stored := &models.Guest{}
	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketGuests))
		res := bucket.Get(itob(id))
		if res == nil {
			return fmt.Errorf("guest %d: %w", id, repository.ErrNotFound)
		}
		if err := json.Unmarshal(res, stored); err != nil {
			return err
		}
		fn(stored)
		stored.UpdatedAt = time.Now()

		j, err := json.Marshal(stored)
		if err != nil {
			return err
		}
		return bucket.Put(itob(id), j)
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

func (s *GuestStore) Update(ctx context.Context, guest *models.Guest) (*models.Guest, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "UpdateGuest")
	defer span.End()

	stored, err := s.modify(guest.ID, func(stored *models.Guest) {
		stored.Email = guest.Email
		stored.Attending = guest.Attending
		stored.DietaryRestrictions = guest.DietaryRestrictions
		stored.MessageForCouple = guest.MessageForCouple
		stored.RespondedAt = guest.RespondedAt
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to update guest: %w", err)
	}
	guest.UpdatedAt = stored.UpdatedAt
	return guest, nil
}

func (s *GuestStore) UpdateProfile(ctx context.Context, guest *models.Guest) (*models.Guest, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "UpdateGuestProfile")
	defer span.End()

	stored, err := s.modify(guest.ID, func(stored *models.Guest) {
		stored.GroupID = guest.GroupID
		stored.FirstName = guest.FirstName
		stored.LastName = guest.LastName
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to update guest profile: %w", err)
	}
	guest.UpdatedAt = stored.UpdatedAt
	return guest, nil
}

func (s *GuestStore) Delete(ctx context.Context, id int64) error {
	var span trace.Span
	_, span = tracer.Start(ctx, "DeleteGuest")
	defer span.End()

	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketGuests))
		if bucket.Get(itob(id)) == nil {
			return fmt.Errorf("guest %d: %w", id, repository.ErrNotFound)
		}
		return bucket.Delete(itob(id))
	})
}

func (s *GuestStore) DeleteAll(ctx context.Context) (int64, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "DeleteAllGuests")
	defer span.End()

	var n int64
	err := s.db.Update(func(tx *bolt.Tx) error {
		n = int64(tx.Bucket([]byte(bucketGuests)).Stats().KeyN)
		if err := tx.DeleteBucket([]byte(bucketGuests)); err != nil {
			return err
		}
		_, err := tx.CreateBucket([]byte(bucketGuests))
		return err
	})
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to delete guests: %w", err)
	}
	return n, nil
}
