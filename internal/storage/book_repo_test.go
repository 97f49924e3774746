package storage

import (
	"context"
	"database/sql"
	"testing"

	"booklab/internal/secret"
)

// testDB opens a migrated throwaway database for a single test.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := New(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return db
}

func testCodec(t *testing.T) *secret.Codec {
	t.Helper()
	codec, err := secret.NewCodec()
	if err != nil {
		t.Fatalf("secret.NewCodec() error = %v", err)
	}
	return codec
}

func TestBookRepo_CreateAndGet(t *testing.T) {
	db := testDB(t)
	repo := NewBookRepo(db)
	ctx := context.Background()

	book, err := repo.Create(ctx, "My Book", "A description", "Jane Author")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if book.ID == 0 {
		t.Error("Create() returned zero id")
	}
	if book.Title != "My Book" || book.Description != "A description" || book.Author != "Jane Author" {
		t.Errorf("Create() returned unexpected fields: %+v", book)
	}
	if book.ChapterCount != 0 || book.WordCount != 0 {
		t.Errorf("new book should have zero counts, got chapters=%d words=%d", book.ChapterCount, book.WordCount)
	}
	if book.CreatedAt.IsZero() || book.UpdatedAt.IsZero() {
		t.Error("Create() returned zero timestamps")
	}

	got, err := repo.GetByID(ctx, book.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Title != book.Title {
		t.Errorf("GetByID() title = %q, want %q", got.Title, book.Title)
	}
}

func TestBookRepo_OptionalFieldsEmpty(t *testing.T) {
	db := testDB(t)
	repo := NewBookRepo(db)
	ctx := context.Background()

	book, err := repo.Create(ctx, "Untitled Project", "", "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if book.Description != "" || book.Author != "" {
		t.Errorf("empty optional fields should read back empty, got %+v", book)
	}
}

func TestBookRepo_GetByID_NotFound(t *testing.T) {
	db := testDB(t)
	repo := NewBookRepo(db)

	_, err := repo.GetByID(context.Background(), 999)
	if err != ErrNotFound {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestBookRepo_DerivedCounts(t *testing.T) {
	db := testDB(t)
	bookRepo := NewBookRepo(db)
	chapterRepo := NewChapterRepo(db)
	ctx := context.Background()

	book, err := bookRepo.Create(ctx, "Counted", "", "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// "one two three" = 3 words, "four five" = 2 words, empty content ignored
	if _, err := chapterRepo.Create(ctx, book.ID, "One", "", "one two three", ""); err != nil {
		t.Fatalf("chapter Create() error = %v", err)
	}
	if _, err := chapterRepo.Create(ctx, book.ID, "Two", "", "four five", ""); err != nil {
		t.Fatalf("chapter Create() error = %v", err)
	}
	if _, err := chapterRepo.Create(ctx, book.ID, "Empty", "", "", ""); err != nil {
		t.Fatalf("chapter Create() error = %v", err)
	}

	got, err := bookRepo.GetByID(ctx, book.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.ChapterCount != 3 {
		t.Errorf("ChapterCount = %d, want 3", got.ChapterCount)
	}
	if got.WordCount != 5 {
		t.Errorf("WordCount = %d, want 5", got.WordCount)
	}
}

func TestBookRepo_Update(t *testing.T) {
	db := testDB(t)
	repo := NewBookRepo(db)
	ctx := context.Background()

	book, err := repo.Create(ctx, "Before", "old", "old author")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated, err := repo.Update(ctx, book.ID, "After", "new", "new author")
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Title != "After" || updated.Description != "new" || updated.Author != "new author" {
		t.Errorf("Update() returned unexpected fields: %+v", updated)
	}

	if _, err := repo.Update(ctx, 999, "x", "", ""); err != ErrNotFound {
		t.Errorf("Update() on missing book error = %v, want ErrNotFound", err)
	}
}

func TestBookRepo_Delete_CascadesChapters(t *testing.T) {
	db := testDB(t)
	bookRepo := NewBookRepo(db)
	chapterRepo := NewChapterRepo(db)
	ctx := context.Background()

	book, err := bookRepo.Create(ctx, "Doomed", "", "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	for _, title := range []string{"A", "B", "C"} {
		if _, err := chapterRepo.Create(ctx, book.ID, title, "", "", ""); err != nil {
			t.Fatalf("chapter Create() error = %v", err)
		}
	}

	if err := bookRepo.Delete(ctx, book.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	var remaining int
	if err := db.QueryRow("SELECT COUNT(*) FROM chapters WHERE book_id = ?", book.ID).Scan(&remaining); err != nil {
		t.Fatalf("count query error = %v", err)
	}
	if remaining != 0 {
		t.Errorf("chapters remaining after book delete = %d, want 0", remaining)
	}

	if err := bookRepo.Delete(ctx, book.ID); err != ErrNotFound {
		t.Errorf("Delete() on missing book error = %v, want ErrNotFound", err)
	}
}
