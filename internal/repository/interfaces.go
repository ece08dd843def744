package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Kerhoff/wedding/internal/models"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("record not found")

// GuestRepository defines the guest operations the RSVP flow relies on.
// Results are always ordered by guest ID.
type GuestRepository interface {
	FindByName(ctx context.Context, firstName, lastName string) ([]*models.Guest, error)
	FindByGroup(ctx context.Context, groupID uuid.UUID) ([]*models.Guest, error)
	GetByID(ctx context.Context, id int64) (*models.Guest, error)
	// Update writes the response fields (attending, email, dietary
	// restrictions, message, responded_at) of a single guest atomically.
	Update(ctx context.Context, guest *models.Guest) (*models.Guest, error)
}

// GuestAdminRepository adds the record management operations used by the
// admin surfaces and the data tool. The RSVP flow never calls these.
type GuestAdminRepository interface {
	GuestRepository
	Create(ctx context.Context, guest *models.Guest) (*models.Guest, error)
	List(ctx context.Context) ([]*models.Guest, error)
	// UpdateProfile writes name and group fields.
	UpdateProfile(ctx context.Context, guest *models.Guest) (*models.Guest, error)
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) (int64, error)
}

// StoryRepository defines the interface for story timeline operations
type StoryRepository interface {
	Create(ctx context.Context, entry *models.StoryEntry) (*models.StoryEntry, error)
	List(ctx context.Context) ([]*models.StoryEntry, error)
}
