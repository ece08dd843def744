package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Kerhoff/wedding/internal/models"
	"github.com/Kerhoff/wedding/internal/repository"
)

const guestColumns = `id, group_id, first_name, last_name, email, attending,
		dietary_restrictions, message_for_couple, responded_at, created_at, updated_at`

type guestRepository struct {
	db *sql.DB
}

// NewGuestRepository creates a new guest repository
func NewGuestRepository(db *sql.DB) repository.GuestAdminRepository {
	return &guestRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGuest(row rowScanner) (*models.Guest, error) {
	guest := &models.Guest{}
	err := row.Scan(
		&guest.ID,
		&guest.GroupID,
		&guest.FirstName,
		&guest.LastName,
		&guest.Email,
		&guest.Attending,
		&guest.DietaryRestrictions,
		&guest.MessageForCouple,
		&guest.RespondedAt,
		&guest.CreatedAt,
		&guest.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return guest, nil
}

func (r *guestRepository) queryGuests(ctx context.Context, query string, args ...any) ([]*models.Guest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var guests []*models.Guest
	for rows.Next() {
		guest, err := scanGuest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan guest: %w", err)
		}
		guests = append(guests, guest)
	}

	return guests, rows.Err()
}

func (r *guestRepository) Create(ctx context.Context, guest *models.Guest) (*models.Guest, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "CreateGuest")
	defer span.End()

	query := `
		INSERT INTO guests (group_id, first_name, last_name, email, attending,
			dietary_restrictions, message_for_couple, responded_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	if guest.GroupID == uuid.Nil {
		span.AddEvent("group id is nil, generate a new one")
		guest.GroupID = uuid.New()
	}

	now := time.Now()
	guest.CreatedAt = now
	guest.UpdatedAt = now

	err := r.db.QueryRowContext(ctx, query,
		guest.GroupID,
		guest.FirstName,
		guest.LastName,
		guest.Email,
		guest.Attending,
		guest.DietaryRestrictions,
		guest.MessageForCouple,
		guest.RespondedAt,
		guest.CreatedAt,
		guest.UpdatedAt,
	).Scan(&guest.ID, &guest.CreatedAt, &guest.UpdatedAt)

	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create guest: %w", err)
	}

	return guest, nil
}

func (r *guestRepository) FindByName(ctx context.Context, firstName, lastName string) ([]*models.Guest, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "FindGuestsByName")
	defer span.End()

	query := `
		SELECT ` + guestColumns + `
		FROM guests
		WHERE LOWER(first_name) = LOWER($1) AND LOWER(last_name) = LOWER($2)
		ORDER BY id ASC`

	guests, err := r.queryGuests(ctx, query, firstName, lastName)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to find guests by name: %w", err)
	}
	span.SetAttributes(attribute.Int("guests.count", len(guests)))

	return guests, nil
}

func (r *guestRepository) FindByGroup(ctx context.Context, groupID uuid.UUID) ([]*models.Guest, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "FindGuestsByGroup")
	defer span.End()

	query := `
		SELECT ` + guestColumns + `
		FROM guests
		WHERE group_id = $1
		ORDER BY id ASC`

	guests, err := r.queryGuests(ctx, query, groupID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to find guests by group: %w", err)
	}
	span.SetAttributes(attribute.Int("guests.count", len(guests)))

	return guests, nil
}

func (r *guestRepository) GetByID(ctx context.Context, id int64) (*models.Guest, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "GetGuestByID")
	defer span.End()

	query := `
		SELECT ` + guestColumns + `
		FROM guests
		WHERE id = $1`

	guest, err := scanGuest(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("guest %d: %w", id, repository.ErrNotFound)
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get guest by ID: %w", err)
	}

	return guest, nil
}

func (r *guestRepository) List(ctx context.Context) ([]*models.Guest, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "ListGuests")
	defer span.End()

	query := `
		SELECT ` + guestColumns + `
		FROM guests
		ORDER BY id ASC`

	guests, err := r.queryGuests(ctx, query)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list guests: %w", err)
	}

	return guests, nil
}

func (r *guestRepository) Update(ctx context.Context, guest *models.Guest) (*models.Guest, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "UpdateGuest")
	defer span.End()

	query := `
		UPDATE guests
		SET email = $2, attending = $3, dietary_restrictions = $4,
			message_for_couple = $5, responded_at = $6, updated_at = $7
		WHERE id = $1
		RETURNING updated_at`

	guest.UpdatedAt = time.Now()

	err := r.db.QueryRowContext(ctx, query,
		guest.ID,
		guest.Email,
		guest.Attending,
		guest.DietaryRestrictions,
		guest.MessageForCouple,
		guest.RespondedAt,
		guest.UpdatedAt,
	).Scan(&guest.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("guest %d: %w", guest.ID, repository.ErrNotFound)
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to update guest: %w", err)
	}

	return guest, nil
}

func (r *guestRepository) UpdateProfile(ctx context.Context, guest *models.Guest) (*models.Guest, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "UpdateGuestProfile")
	defer span.End()

	query := `
		UPDATE guests
		SET group_id = $2, first_name = $3, last_name = $4, updated_at = $5
		WHERE id = $1
		RETURNING updated_at`

	guest.UpdatedAt = time.Now()

	err := r.db.QueryRowContext(ctx, query,
		guest.ID,
		guest.GroupID,
		guest.FirstName,
		guest.LastName,
		guest.UpdatedAt,
	).Scan(&guest.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("guest %d: %w", guest.ID, repository.ErrNotFound)
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to update guest profile: %w", err)
	}

	return guest, nil
}

func (r *guestRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM guests WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete guest: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("guest %d: %w", id, repository.ErrNotFound)
	}

	return nil
}

func (r *guestRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM guests`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete guests: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
