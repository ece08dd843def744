package models

import "time"

// StoryEntry is one milestone on the couple's story timeline
type StoryEntry struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Subtitle    string    `json:"subtitle,omitempty" db:"subtitle"`
	Date        time.Time `json:"date" db:"date"`
	Description string    `json:"description" db:"description"`
	ImageURL    string    `json:"image_url,omitempty" db:"image_url"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
