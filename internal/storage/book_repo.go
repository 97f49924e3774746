package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_book_store.go -package=mocks booklab/internal/storage BookStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")

	// ErrIncompleteReorder is returned when a reorder list is not a
	// permutation of the book's chapter IDs. Applying such a list would
	// leave duplicate or missing chapter numbers.
	ErrIncompleteReorder = errors.New("reorder list must contain each of the book's chapters exactly once")
)

// bookColumns is the aggregate book projection: every chapter mutation
// touches books.updated_at, so updated_at DESC keeps recently edited books
// first. Word count is a whitespace-token approximation over chapter
// content.
const bookColumns = `
	SELECT b.id, b.title, b.description, b.author, b.created_at, b.updated_at,
		COUNT(DISTINCT c.id) as chapter_count,
		COALESCE(SUM(LENGTH(c.content) - LENGTH(REPLACE(c.content, ' ', '')) + 1), 0) as word_count
	FROM books b
	LEFT JOIN chapters c ON b.id = c.book_id`

// BookStore defines the interface for book storage operations.
type BookStore interface {
	// List returns all books with derived chapter and word counts,
	// most recently updated first.
	List(ctx context.Context) ([]*Book, error)
	// GetByID returns a single book with derived counts.
	// Returns nil and ErrNotFound if not found.
	GetByID(ctx context.Context, id int64) (*Book, error)
	// Create inserts a new book and returns it.
	Create(ctx context.Context, title, description, author string) (*Book, error)
	// Update replaces the book's title, description and author.
	Update(ctx context.Context, id int64, title, description, author string) (*Book, error)
	// Delete removes a book and, via cascade, all its chapters.
	Delete(ctx context.Context, id int64) error
}

// BookRepo provides methods for book operations.
// It implements the BookStore interface.
type BookRepo struct {
	db *sql.DB
}

// NewBookRepo creates a new BookRepo.
func NewBookRepo(db *sql.DB) *BookRepo {
	return &BookRepo{db: db}
}

// List returns all books ordered by updated_at descending.
func (r *BookRepo) List(ctx context.Context) ([]*Book, error) {
	rows, err := r.db.QueryContext(ctx, bookColumns+`
		GROUP BY b.id
		ORDER BY b.updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query books: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var books []*Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate books: %w", err)
	}
	return books, nil
}

// GetByID returns a single book with derived counts.
// Returns nil and ErrNotFound if not found.
func (r *BookRepo) GetByID(ctx context.Context, id int64) (*Book, error) {
	rows, err := r.db.QueryContext(ctx, bookColumns+`
		WHERE b.id = ?
		GROUP BY b.id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query book: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to query book: %w", err)
		}
		return nil, ErrNotFound
	}
	return scanBook(rows)
}

// Create inserts a new book. Empty description and author are stored as NULL.
func (r *BookRepo) Create(ctx context.Context, title, description, author string) (*Book, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO books (title, description, author) VALUES (?, ?, ?)",
		title, nullable(description), nullable(author),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert book: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get book id: %w", err)
	}
	return r.GetByID(ctx, id)
}

// Update replaces the book's fields and touches updated_at.
func (r *BookRepo) Update(ctx context.Context, id int64, title, description, author string) (*Book, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE books
		 SET title = ?, description = ?, author = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		title, nullable(description), nullable(author), id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update book: %w", err)
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

// Delete removes a book. Chapters are removed by the foreign-key cascade.
func (r *BookRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM books WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
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

// scanBook scans the aggregate book projection from the current row.
func scanBook(rows *sql.Rows) (*Book, error) {
	var book Book
	var description, author sql.NullString
	var createdAtStr, updatedAtStr string

	if err := rows.Scan(&book.ID, &book.Title, &description, &author,
		&createdAtStr, &updatedAtStr, &book.ChapterCount, &book.WordCount); err != nil {
		return nil, fmt.Errorf("failed to scan book: %w", err)
	}

	book.Description = description.String
	book.Author = author.String

	var err error
	if book.CreatedAt, err = parseTimestamp(createdAtStr); err != nil {
		return nil, err
	}
	if book.UpdatedAt, err = parseTimestamp(updatedAtStr); err != nil {
		return nil, err
	}
	return &book, nil
}

// nullable maps an empty string to NULL for optional text columns.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
