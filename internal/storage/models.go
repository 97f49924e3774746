package storage

import (
	"fmt"
	"time"
)

// Chapter status values. The status is an informational tag set explicitly
// by the caller; it is never derived from which optional fields are filled.
const (
	StatusDraft    = "draft"
	StatusOutline  = "outline"
	StatusComplete = "complete"
)

// Book represents a book project.
type Book struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Author      string    `json:"author"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Derived at read time, not stored.
	ChapterCount int `json:"chapter_count"`
	WordCount    int `json:"word_count"`
}

// Chapter represents a chapter within a book. ChapterNumber is 1-based and
// densely packed within its book.
type Chapter struct {
	ID            int64     `json:"id"`
	BookID        int64     `json:"book_id"`
	Title         string    `json:"title"`
	ChapterNumber int       `json:"chapter_number"`
	Outline       string    `json:"outline"`
	Content       string    `json:"content"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ChapterUpdate carries a partial chapter update. Nil fields are left
// unchanged.
type ChapterUpdate struct {
	Title   *string `json:"title"`
	Outline *string `json:"outline"`
	Content *string `json:"content"`
	Status  *string `json:"status"`
}

// Note represents a free-text note.
type Note struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`

	// Derived from the link table at read time.
	Topics   []string `json:"topics"`
	TopicIDs []int64  `json:"topic_ids"`
}

// Topic represents a topic label linked to zero or more notes.
type Topic struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`

	// Derived at read time.
	NoteCount int `json:"note_count"`
}

// parseTimestamp parses a SQLite DATETIME column value.
func parseTimestamp(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02 15:04:05", raw); err == nil {
		return t, nil
	}
	// SQLite might use a different format depending on how the value was written
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", raw, err)
	}
	return t, nil
}
