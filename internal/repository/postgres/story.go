package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Kerhoff/wedding/internal/models"
	"github.com/Kerhoff/wedding/internal/repository"
)

type storyRepository struct {
	db *sql.DB
}

// NewStoryRepository creates a new story timeline repository
func NewStoryRepository(db *sql.DB) repository.StoryRepository {
	return &storyRepository{db: db}
}

func (r *storyRepository) Create(ctx context.Context, entry *models.StoryEntry) (*models.StoryEntry, error) {
	query := `
		INSERT INTO story_entries (title, subtitle, date, description, image_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	entry.CreatedAt = time.Now()

	err := r.db.QueryRowContext(ctx, query,
		entry.Title,
		entry.Subtitle,
		entry.Date,
		entry.Description,
		entry.ImageURL,
		entry.CreatedAt,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create story entry: %w", err)
	}

	return entry, nil
}

func (r *storyRepository) List(ctx context.Context) ([]*models.StoryEntry, error) {
	ctx, span := tracer.Start(ctx, "ListStoryEntries")
	defer span.End()

	query := `
		SELECT id, title, subtitle, date, description, image_url, created_at
		FROM story_entries
		ORDER BY date ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to query story entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.StoryEntry
	for rows.Next() {
		entry := &models.StoryEntry{}
		if err := rows.Scan(
			&entry.ID,
			&entry.Title,
			&entry.Subtitle,
			&entry.Date,
			&entry.Description,
			&entry.ImageURL,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan story entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
