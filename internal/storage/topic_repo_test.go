package storage

import (
	"context"
	"testing"
)

func TestTopicRepo_CreateOrGet_Idempotent(t *testing.T) {
	db := testDB(t)
	repo := NewTopicRepo(db)
	ctx := context.Background()

	first, err := repo.CreateOrGet(ctx, "Machine Learning")
	if err != nil {
		t.Fatalf("CreateOrGet() error = %v", err)
	}
	second, err := repo.CreateOrGet(ctx, "Machine Learning")
	if err != nil {
		t.Fatalf("CreateOrGet() second call error = %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("CreateOrGet() ids differ: %d vs %d", first.ID, second.ID)
	}

	var count int
	if err := db.QueryRow(
		"SELECT COUNT(*) FROM topics WHERE name = ?", "Machine Learning").Scan(&count); err != nil {
		t.Fatalf("count query error = %v", err)
	}
	if count != 1 {
		t.Errorf("topic rows with name = %d, want 1", count)
	}
}

func TestTopicRepo_CreateOrGet_CaseSensitive(t *testing.T) {
	db := testDB(t)
	repo := NewTopicRepo(db)
	ctx := context.Background()

	upper, err := repo.CreateOrGet(ctx, "AI")
	if err != nil {
		t.Fatalf("CreateOrGet() error = %v", err)
	}
	lower, err := repo.CreateOrGet(ctx, "ai")
	if err != nil {
		t.Fatalf("CreateOrGet() error = %v", err)
	}

	// Names match exactly; differently-cased names are distinct topics
	if upper.ID == lower.ID {
		t.Error("differently-cased names collapsed into one topic")
	}
}

func TestTopicRepo_GetByName(t *testing.T) {
	db := testDB(t)
	repo := NewTopicRepo(db)
	ctx := context.Background()

	created, err := repo.CreateOrGet(ctx, "History")
	if err != nil {
		t.Fatalf("CreateOrGet() error = %v", err)
	}

	got, err := repo.GetByName(ctx, "History")
	if err != nil {
		t.Fatalf("GetByName() error = %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("GetByName() id = %d, want %d", got.ID, created.ID)
	}

	if _, err := repo.GetByName(ctx, "Missing"); err != ErrNotFound {
		t.Errorf("GetByName() on missing topic error = %v, want ErrNotFound", err)
	}
}

func TestTopicRepo_ListAll_NoteCounts(t *testing.T) {
	db := testDB(t)
	topicRepo := NewTopicRepo(db)
	noteRepo := NewNoteRepo(db)
	ctx := context.Background()

	busy, err := topicRepo.CreateOrGet(ctx, "Busy")
	if err != nil {
		t.Fatalf("CreateOrGet() error = %v", err)
	}
	if _, err := topicRepo.CreateOrGet(ctx, "Quiet"); err != nil {
		t.Fatalf("CreateOrGet() error = %v", err)
	}

	for _, content := range []string{"note one", "note two"} {
		note, err := noteRepo.Create(ctx, content)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if err := noteRepo.LinkTopic(ctx, note.ID, busy.ID); err != nil {
			t.Fatalf("LinkTopic() error = %v", err)
		}
	}

	topics, err := topicRepo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(topics) != 2 {
		t.Fatalf("ListAll() returned %d topics, want 2", len(topics))
	}

	// Ordered by name: Busy before Quiet
	if topics[0].Name != "Busy" || topics[0].NoteCount != 2 {
		t.Errorf("topic[0] = %q (%d notes), want Busy (2)", topics[0].Name, topics[0].NoteCount)
	}
	if topics[1].Name != "Quiet" || topics[1].NoteCount != 0 {
		t.Errorf("topic[1] = %q (%d notes), want Quiet (0)", topics[1].Name, topics[1].NoteCount)
	}
}
