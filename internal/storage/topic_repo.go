package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_topic_store.go -package=mocks booklab/internal/storage TopicStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// TopicStore defines the interface for topic storage operations.
type TopicStore interface {
	// ListAll returns all topics with their note counts, ordered by name.
	ListAll(ctx context.Context) ([]*Topic, error)
	// GetByID returns a single topic.
	// Returns nil and ErrNotFound if not found.
	GetByID(ctx context.Context, id int64) (*Topic, error)
	// GetByName returns the topic with the exact given name.
	// Returns nil and ErrNotFound if not found.
	GetByName(ctx context.Context, name string) (*Topic, error)
	// CreateOrGet inserts a topic, or returns the existing one when the
	// name is already taken. Names are matched exactly (case-sensitive).
	CreateOrGet(ctx context.Context, name string) (*Topic, error)
}

// TopicRepo provides methods for topic operations.
// It implements the TopicStore interface.
type TopicRepo struct {
	db *sql.DB
}

// NewTopicRepo creates a new TopicRepo.
func NewTopicRepo(db *sql.DB) *TopicRepo {
	return &TopicRepo{db: db}
}

// ListAll returns all topics with their note counts, ordered by name.
func (r *TopicRepo) ListAll(ctx context.Context) ([]*Topic, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT t.id, t.name, t.created_at, COUNT(nt.note_id) as note_count
		 FROM topics t
		 LEFT JOIN notes_topics nt ON t.id = nt.topic_id
		 GROUP BY t.id
		 ORDER BY t.name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query topics: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	topics := []*Topic{}
	for rows.Next() {
		var topic Topic
		var createdAtStr string
		if err := rows.Scan(&topic.ID, &topic.Name, &createdAtStr, &topic.NoteCount); err != nil {
			return nil, fmt.Errorf("failed to scan topic: %w", err)
		}
		if topic.CreatedAt, err = parseTimestamp(createdAtStr); err != nil {
			return nil, err
		}
		topics = append(topics, &topic)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate topics: %w", err)
	}
	return topics, nil
}

// GetByID returns a single topic.
// Returns nil and ErrNotFound if not found.
func (r *TopicRepo) GetByID(ctx context.Context, id int64) (*Topic, error) {
	return r.getOne(ctx, "SELECT id, name, created_at FROM topics WHERE id = ?", id)
}

// GetByName returns the topic with the exact given name.
// Returns nil and ErrNotFound if not found.
func (r *TopicRepo) GetByName(ctx context.Context, name string) (*Topic, error) {
	return r.getOne(ctx, "SELECT id, name, created_at FROM topics WHERE name = ?", name)
}

// CreateOrGet inserts a topic with the given name. When the UNIQUE
// constraint fires, the existing topic is fetched and returned instead;
// the constraint violation never reaches the caller.
func (r *TopicRepo) CreateOrGet(ctx context.Context, name string) (*Topic, error) {
	res, err := r.db.ExecContext(ctx, "INSERT INTO topics (name) VALUES (?)", name)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return r.GetByName(ctx, name)
		}
		return nil, fmt.Errorf("failed to insert topic: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get topic id: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *TopicRepo) getOne(ctx context.Context, query string, arg any) (*Topic, error) {
	var topic Topic
	var createdAtStr string

	err := r.db.QueryRowContext(ctx, query, arg).Scan(&topic.ID, &topic.Name, &createdAtStr)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query topic: %w", err)
	}

	if topic.CreatedAt, err = parseTimestamp(createdAtStr); err != nil {
		return nil, err
	}
	return &topic, nil
}
