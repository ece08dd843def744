package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/Kerhoff/wedding/internal/models"
	"github.com/Kerhoff/wedding/internal/repository"
)

const bucketStories = "story_entries"

// NewStoryStore creates the story bucket if needed and returns the store.
func NewStoryStore(db *bolt.DB) (*StoryStore, error) {
	return &StoryStore{db: db}, db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketStories))
		return err
	})
}

type StoryStore struct {
	db *bolt.DB
}

var _ repository.StoryRepository = (*StoryStore)(nil)

func (s *StoryStore) Create(ctx context.Context, entry *models.StoryEntry) (*models.StoryEntry, error) {
	_, span := tracer.Start(ctx, "CreateStoryEntry")
	defer span.End()

	entry.CreatedAt = time.Now()
	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketStories))
		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		entry.ID = int64(seq)

		j, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		return bucket.Put(itob(entry.ID), j)
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create story entry: %w", err)
	}
	return entry, nil
}

func (s *StoryStore) List(ctx context.Context) ([]*models.StoryEntry, error) {
	_, span := tracer.Start(ctx, "ListStoryEntries")
	defer span.End()

	var entries []*models.StoryEntry
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketStories)).ForEach(func(_, v []byte) error {
			entry := &models.StoryEntry{}
			if err := json.Unmarshal(v, entry); err != nil {
				return err
			}
			entries = append(entries, entry)
			return nil
		})
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list story entries: %w", err)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})
	return entries, nil
}
