package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_note_store.go -package=mocks booklab/internal/storage NoteStore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// topicSep joins aggregated topic columns. Topic names may contain
// commas, so the queries concatenate on the ASCII unit separator.
const topicSep = "\x1f"

// NoteStore defines the interface for note storage operations.
type NoteStore interface {
	// ListAll returns all notes with their linked topic names, newest first.
	ListAll(ctx context.Context) ([]*Note, error)
	// GetByID returns a note with its linked topic names and ids.
	// Returns nil and ErrNotFound if not found.
	GetByID(ctx context.Context, id int64) (*Note, error)
	// GetByIDs returns the notes for the given ids, newest first.
	// Unknown ids are silently skipped.
	GetByIDs(ctx context.Context, ids []int64) ([]*Note, error)
	// Create inserts a note and returns its id.
	Create(ctx context.Context, content string) (*Note, error)
	// UpdateContent replaces a note's content.
	UpdateContent(ctx context.Context, id int64, content string) (*Note, error)
	// Delete removes a note. Topic links are removed by cascade; the
	// topics themselves are kept.
	Delete(ctx context.Context, id int64) error
	// LinkTopic links a note to a topic. Linking the same pair twice is a
	// no-op.
	LinkTopic(ctx context.Context, noteID, topicID int64) error
	// UnlinkTopic removes a note-topic link.
	UnlinkTopic(ctx context.Context, noteID, topicID int64) error
	// ListByTopic returns the notes linked to a topic, newest first.
	ListByTopic(ctx context.Context, topicID int64) ([]*Note, error)
}

// NoteRepo provides methods for note operations.
// It implements the NoteStore interface.
type NoteRepo struct {
	db *sql.DB
}

// NewNoteRepo creates a new NoteRepo.
func NewNoteRepo(db *sql.DB) *NoteRepo {
	return &NoteRepo{db: db}
}

// ListAll returns all notes with their linked topic names, newest first.
func (r *NoteRepo) ListAll(ctx context.Context) ([]*Note, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT n.id, n.content, n.created_at, GROUP_CONCAT(t.name, char(31)), GROUP_CONCAT(t.id, char(31))
		 FROM notes n
		 LEFT JOIN notes_topics nt ON n.id = nt.note_id
		 LEFT JOIN topics t ON nt.topic_id = t.id
		 GROUP BY n.id
		 ORDER BY n.created_at DESC, n.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()
	return collectNotes(rows)
}

// GetByID returns a note with its linked topic names and ids.
// Returns nil and ErrNotFound if not found.
func (r *NoteRepo) GetByID(ctx context.Context, id int64) (*Note, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT n.id, n.content, n.created_at, GROUP_CONCAT(t.name, char(31)), GROUP_CONCAT(t.id, char(31))
		 FROM notes n
		 LEFT JOIN notes_topics nt ON n.id = nt.note_id
		 LEFT JOIN topics t ON nt.topic_id = t.id
		 WHERE n.id = ?
		 GROUP BY n.id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query note: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to query note: %w", err)
		}
		return nil, ErrNotFound
	}
	return scanNote(rows)
}

// GetByIDs returns the notes for the given ids, newest first.
func (r *NoteRepo) GetByIDs(ctx context.Context, ids []int64) ([]*Note, error) {
	if len(ids) == 0 {
		return []*Note{}, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT n.id, n.content, n.created_at, GROUP_CONCAT(t.name, char(31)), GROUP_CONCAT(t.id, char(31))
		 FROM notes n
		 LEFT JOIN notes_topics nt ON n.id = nt.note_id
		 LEFT JOIN topics t ON nt.topic_id = t.id
		 WHERE n.id IN (`+placeholders+`)
		 GROUP BY n.id
		 ORDER BY n.created_at DESC, n.id DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()
	return collectNotes(rows)
}

// Create inserts a note and returns it.
func (r *NoteRepo) Create(ctx context.Context, content string) (*Note, error) {
	res, err := r.db.ExecContext(ctx, "INSERT INTO notes (content) VALUES (?)", content)
	if err != nil {
		return nil, fmt.Errorf("failed to insert note: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get note id: %w", err)
	}
	return r.GetByID(ctx, id)
}

// UpdateContent replaces a note's content.
func (r *NoteRepo) UpdateContent(ctx context.Context, id int64, content string) (*Note, error) {
	res, err := r.db.ExecContext(ctx, "UPDATE notes SET content = ? WHERE id = ?", content, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes a note. The cascade removes its topic links only.
func (r *NoteRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM notes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// LinkTopic links a note to a topic. Duplicate links are silently ignored.
func (r *NoteRepo) LinkTopic(ctx context.Context, noteID, topicID int64) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO notes_topics (note_id, topic_id) VALUES (?, ?)",
		noteID, topicID,
	)
	if err != nil {
		return fmt.Errorf("failed to link note to topic: %w", err)
	}
	return nil
}

// UnlinkTopic removes a note-topic link.
func (r *NoteRepo) UnlinkTopic(ctx context.Context, noteID, topicID int64) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM notes_topics WHERE note_id = ? AND topic_id = ?",
		noteID, topicID,
	)
	if err != nil {
		return fmt.Errorf("failed to unlink note from topic: %w", err)
	}
	return nil
}

// ListByTopic returns the notes linked to a topic, newest first.
func (r *NoteRepo) ListByTopic(ctx context.Context, topicID int64) ([]*Note, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT n.id, n.content, n.created_at, NULL, NULL
		 FROM notes n
		 INNER JOIN notes_topics nt ON n.id = nt.note_id
		 WHERE nt.topic_id = ?
		 ORDER BY n.created_at DESC, n.id DESC`, topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes by topic: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()
	return collectNotes(rows)
}

func collectNotes(rows *sql.Rows) ([]*Note, error) {
	notes := []*Note{}
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notes: %w", err)
	}
	return notes, nil
}

func scanNote(rows *sql.Rows) (*Note, error) {
	var note Note
	var createdAtStr string
	var topicNames, topicIDs sql.NullString

	if err := rows.Scan(&note.ID, &note.Content, &createdAtStr, &topicNames, &topicIDs); err != nil {
		return nil, fmt.Errorf("failed to scan note: %w", err)
	}

	var err error
	if note.CreatedAt, err = parseTimestamp(createdAtStr); err != nil {
		return nil, err
	}

	if topicNames.Valid && topicNames.String != "" {
		note.Topics = strings.Split(topicNames.String, topicSep)
	}
	if topicIDs.Valid && topicIDs.String != "" {
		for _, raw := range strings.Split(topicIDs.String, topicSep) {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("failed to parse topic id %q: %w", raw, err)
			}
			note.TopicIDs = append(note.TopicIDs, id)
		}
	}
	return &note, nil
}
