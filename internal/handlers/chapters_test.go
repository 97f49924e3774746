package handlers_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"booklab/internal/storage"
)

func TestChapters_CreateAssignsSequentialNumbers(t *testing.T) {
	e := newEnv(t)
	book := e.createBook(t, "Numbered")

	first := e.createChapter(t, book.ID, "Intro")
	second := e.createChapter(t, book.ID, "Middle")

	if first.ChapterNumber != 1 || second.ChapterNumber != 2 {
		t.Errorf("chapter numbers = %d, %d, want 1, 2", first.ChapterNumber, second.ChapterNumber)
	}
}

func TestChapters_UpdatePartial(t *testing.T) {
	e := newEnv(t)
	book := e.createBook(t, "Partial")
	chapter := e.createChapter(t, book.ID, "Original")

	var updated storage.Chapter
	resp := e.do(t, http.MethodPut, fmt.Sprintf("/api/chapters/%d", chapter.ID), map[string]string{
		"content": "fresh prose",
	}, &updated)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if updated.Content != "fresh prose" {
		t.Errorf("content = %q, want fresh prose", updated.Content)
	}
	if updated.Title != "Original" {
		t.Errorf("title = %q, untouched field should survive a partial update", updated.Title)
	}
}

func TestChapters_DeleteRenumbers(t *testing.T) {
	e := newEnv(t)
	book := e.createBook(t, "Shrinking")
	e.createChapter(t, book.ID, "One")
	two := e.createChapter(t, book.ID, "Two")
	e.createChapter(t, book.ID, "Three")

	resp := e.do(t, http.MethodDelete, fmt.Sprintf("/api/chapters/%d", two.ID), nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}

	var chapters []storage.Chapter
	e.do(t, http.MethodGet, fmt.Sprintf("/api/books/%d/chapters", book.ID), nil, &chapters)
	if len(chapters) != 2 {
		t.Fatalf("len(chapters) = %d, want 2", len(chapters))
	}
	for i, chapter := range chapters {
		if chapter.ChapterNumber != i+1 {
			t.Errorf("chapter %q number = %d, want %d", chapter.Title, chapter.ChapterNumber, i+1)
		}
	}
}

func TestChapters_Reorder(t *testing.T) {
	e := newEnv(t)
	book := e.createBook(t, "Shuffled")
	a := e.createChapter(t, book.ID, "A")
	b := e.createChapter(t, book.ID, "B")
	c := e.createChapter(t, book.ID, "C")

	var reordered []storage.Chapter
	resp := e.do(t, http.MethodPut, fmt.Sprintf("/api/books/%d/chapters/reorder", book.ID),
		map[string][]int64{"chapter_ids": {c.ID, a.ID, b.ID}}, &reordered)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	wantTitles := []string{"C", "A", "B"}
	for i, chapter := range reordered {
		if chapter.Title != wantTitles[i] || chapter.ChapterNumber != i+1 {
			t.Errorf("position %d = %q (#%d), want %q (#%d)",
				i, chapter.Title, chapter.ChapterNumber, wantTitles[i], i+1)
		}
	}
}

func TestChapters_ReorderUnknownIDFails(t *testing.T) {
	e := newEnv(t)
	book := e.createBook(t, "Stable")
	a := e.createChapter(t, book.ID, "A")
	e.createChapter(t, book.ID, "B")

	resp := e.do(t, http.MethodPut, fmt.Sprintf("/api/books/%d/chapters/reorder", book.ID),
		map[string][]int64{"chapter_ids": {a.ID, 9999}}, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

func TestChapters_ReorderPartialListFails(t *testing.T) {
	e := newEnv(t)
	book := e.createBook(t, "Stable")
	a := e.createChapter(t, book.ID, "A")
	e.createChapter(t, book.ID, "B")

	resp := e.do(t, http.MethodPut, fmt.Sprintf("/api/books/%d/chapters/reorder", book.ID),
		map[string][]int64{"chapter_ids": {a.ID}}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}

	// The rejected reorder must leave the numbering untouched
	var chapters []storage.Chapter
	e.do(t, http.MethodGet, fmt.Sprintf("/api/books/%d/chapters", book.ID), nil, &chapters)
	wantTitles := []string{"A", "B"}
	for i, chapter := range chapters {
		if chapter.Title != wantTitles[i] || chapter.ChapterNumber != i+1 {
			t.Errorf("position %d = %q (#%d), want %q (#%d)",
				i, chapter.Title, chapter.ChapterNumber, wantTitles[i], i+1)
		}
	}
}

func TestChapters_AutosaveFlushesAfterQuietPeriod(t *testing.T) {
	e := newEnv(t)
	book := e.createBook(t, "Autosaved")
	chapter := e.createChapter(t, book.ID, "Draft")

	resp := e.do(t, http.MethodPut, fmt.Sprintf("/api/chapters/%d/autosave", chapter.ID),
		map[string]string{"content": "buffered edit"}, nil)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusAccepted)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		var got storage.Chapter
		e.do(t, http.MethodGet, fmt.Sprintf("/api/chapters/%d", chapter.ID), nil, &got)
		if got.Content == "buffered edit" {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("autosaved content never reached the database")
}

func TestChapters_AutosaveUnknownChapter(t *testing.T) {
	e := newEnv(t)

	resp := e.do(t, http.MethodPut, "/api/chapters/9999/autosave",
		map[string]string{"content": "orphan"}, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

func TestChapters_OutlinePreview(t *testing.T) {
	e := newEnv(t)
	book := e.createBook(t, "Previewed")
	chapter := e.createChapter(t, book.ID, "Outlined")

	e.do(t, http.MethodPut, fmt.Sprintf("/api/chapters/%d", chapter.ID), map[string]string{
		"outline": "# Heading\n\n- first point\n- second point",
	}, nil)

	var preview struct {
		HTML string `json:"html"`
	}
	resp := e.do(t, http.MethodGet, fmt.Sprintf("/api/chapters/%d/outline/preview", chapter.ID), nil, &preview)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if !strings.Contains(preview.HTML, "<h1") || !strings.Contains(preview.HTML, "<li>first point</li>") {
		t.Errorf("preview HTML = %q, want rendered heading and list", preview.HTML)
	}
}
