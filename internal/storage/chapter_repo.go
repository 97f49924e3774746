package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chapter_store.go -package=mocks booklab/internal/storage ChapterStore

import (
	"context"
	"database/sql"
	"fmt"
)

// ChapterStore defines the interface for chapter storage operations.
//
// Chapter numbers within a book are 1-based and densely packed: Create
// assigns max+1, Delete closes the gap, Reorder reassigns positions in a
// single transaction. Every mutation touches the parent book's updated_at.
type ChapterStore interface {
	// ListByBook returns a book's chapters ordered by chapter_number.
	ListByBook(ctx context.Context, bookID int64) ([]*Chapter, error)
	// GetByID returns a single chapter.
	// Returns nil and ErrNotFound if not found.
	GetByID(ctx context.Context, id int64) (*Chapter, error)
	// Create inserts a chapter at the next chapter_number for the book.
	// Status defaults to draft when empty.
	Create(ctx context.Context, bookID int64, title, outline, content, status string) (*Chapter, error)
	// Update applies the non-nil fields of the update.
	Update(ctx context.Context, id int64, update ChapterUpdate) (*Chapter, error)
	// Delete removes a chapter and decrements the numbers of all later
	// chapters in the same book.
	Delete(ctx context.Context, id int64) error
	// Reorder assigns chapter_number = position+1 for each id in order,
	// atomically. orderedIDs must list every chapter of the book exactly
	// once; otherwise ErrIncompleteReorder is returned.
	Reorder(ctx context.Context, bookID int64, orderedIDs []int64) ([]*Chapter, error)
}

// ChapterRepo provides methods for chapter operations.
// It implements the ChapterStore interface.
type ChapterRepo struct {
	db *sql.DB
}

// NewChapterRepo creates a new ChapterRepo.
func NewChapterRepo(db *sql.DB) *ChapterRepo {
	return &ChapterRepo{db: db}
}

// ListByBook returns a book's chapters ordered by chapter_number.
func (r *ChapterRepo) ListByBook(ctx context.Context, bookID int64) ([]*Chapter, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, book_id, title, chapter_number, outline, content, status, created_at, updated_at
		 FROM chapters
		 WHERE book_id = ?
		 ORDER BY chapter_number ASC`, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chapters: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var chapters []*Chapter
	for rows.Next() {
		chapter, err := scanChapter(rows)
		if err != nil {
			return nil, err
		}
		chapters = append(chapters, chapter)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chapters: %w", err)
	}
	return chapters, nil
}

// GetByID returns a single chapter.
// Returns nil and ErrNotFound if not found.
func (r *ChapterRepo) GetByID(ctx context.Context, id int64) (*Chapter, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, book_id, title, chapter_number, outline, content, status, created_at, updated_at
		 FROM chapters WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query chapter: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to query chapter: %w", err)
		}
		return nil, ErrNotFound
	}
	return scanChapter(rows)
}

// Create inserts a chapter at chapter_number = max(existing)+1, computed at
// call time, and touches the book's updated_at.
func (r *ChapterRepo) Create(ctx context.Context, bookID int64, title, outline, content, status string) (*Chapter, error) {
	if status == "" {
		status = StatusDraft
	}

	var nextNumber int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(chapter_number), 0) + 1 FROM chapters WHERE book_id = ?`,
		bookID,
	).Scan(&nextNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to compute next chapter number: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO chapters (book_id, title, chapter_number, outline, content, status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		bookID, title, nextNumber, nullable(outline), nullable(content), status,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert chapter: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get chapter id: %w", err)
	}

	if err := r.touchBook(ctx, bookID); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Update applies the non-nil fields of the update and touches the book's
// updated_at.
func (r *ChapterRepo) Update(ctx context.Context, id int64, update ChapterUpdate) (*Chapter, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	title := current.Title
	outline := current.Outline
	content := current.Content
	status := current.Status
	if update.Title != nil {
		title = *update.Title
	}
	if update.Outline != nil {
		outline = *update.Outline
	}
	if update.Content != nil {
		content = *update.Content
	}
	if update.Status != nil {
		status = *update.Status
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE chapters
		 SET title = ?, outline = ?, content = ?, status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		title, nullable(outline), nullable(content), status, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update chapter: %w", err)
	}

	if err := r.touchBook(ctx, current.BookID); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a chapter, renumbers later chapters in the same book to
// keep the 1..N sequence contiguous, and touches the book's updated_at.
func (r *ChapterRepo) Delete(ctx context.Context, id int64) error {
	chapter, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM chapters WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete chapter: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE chapters SET chapter_number = chapter_number - 1
		 WHERE book_id = ? AND chapter_number > ?`,
		chapter.BookID, chapter.ChapterNumber,
	); err != nil {
		return fmt.Errorf("failed to renumber chapters: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE books SET updated_at = CURRENT_TIMESTAMP WHERE id = ?", chapter.BookID,
	); err != nil {
		return fmt.Errorf("failed to touch book: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit chapter delete: %w", err)
	}
	return nil
}

// Reorder assigns chapter_number = position+1 for each id in the given
// order within a single transaction, then touches the book's updated_at.
// The list must be a permutation of the book's chapter IDs; anything
// shorter, longer, or with duplicates is rejected before any row moves.
// Partial application is never observable.
func (r *ChapterRepo) Reorder(ctx context.Context, bookID int64, orderedIDs []int64) ([]*Chapter, error) {
	seen := make(map[int64]struct{}, len(orderedIDs))
	for _, id := range orderedIDs {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("chapter %d listed twice: %w", id, ErrIncompleteReorder)
		}
		seen[id] = struct{}{}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var total int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM chapters WHERE book_id = ?", bookID,
	).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count chapters: %w", err)
	}
	if total != len(orderedIDs) {
		return nil, fmt.Errorf("book has %d chapters, got %d: %w", total, len(orderedIDs), ErrIncompleteReorder)
	}

	for i, id := range orderedIDs {
		res, err := tx.ExecContext(ctx,
			"UPDATE chapters SET chapter_number = ? WHERE id = ? AND book_id = ?",
			i+1, id, bookID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to renumber chapter %d: %w", id, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to check renumber result: %w", err)
		}
		if affected == 0 {
			return nil, fmt.Errorf("chapter %d: %w", id, ErrNotFound)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE books SET updated_at = CURRENT_TIMESTAMP WHERE id = ?", bookID,
	); err != nil {
		return nil, fmt.Errorf("failed to touch book: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit reorder: %w", err)
	}
	return r.ListByBook(ctx, bookID)
}

// touchBook bumps the parent book's updated_at so book listings sort by
// recent activity.
func (r *ChapterRepo) touchBook(ctx context.Context, bookID int64) error {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE books SET updated_at = CURRENT_TIMESTAMP WHERE id = ?", bookID,
	); err != nil {
		return fmt.Errorf("failed to touch book: %w", err)
	}
	return nil
}

// scanChapter scans a chapter row.
func scanChapter(rows *sql.Rows) (*Chapter, error) {
	var chapter Chapter
	var outline, content sql.NullString
	var createdAtStr, updatedAtStr string

	if err := rows.Scan(&chapter.ID, &chapter.BookID, &chapter.Title, &chapter.ChapterNumber,
		&outline, &content, &chapter.Status, &createdAtStr, &updatedAtStr); err != nil {
		return nil, fmt.Errorf("failed to scan chapter: %w", err)
	}

	chapter.Outline = outline.String
	chapter.Content = content.String

	var err error
	if chapter.CreatedAt, err = parseTimestamp(createdAtStr); err != nil {
		return nil, err
	}
	if chapter.UpdatedAt, err = parseTimestamp(updatedAtStr); err != nil {
		return nil, err
	}
	return &chapter, nil
}
