package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"booklab/internal/storage"
)

func TestBooks_CreateAndGet(t *testing.T) {
	e := newEnv(t)

	var created storage.Book
	resp := e.do(t, http.MethodPost, "/api/books", map[string]string{
		"title":       "Field Notes",
		"description": "Notebook distillation",
		"author":      "R. Ellis",
	}, &created)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	if created.ID == 0 || created.Title != "Field Notes" {
		t.Errorf("created book = %+v", created)
	}

	var got storage.Book
	resp = e.do(t, http.MethodGet, fmt.Sprintf("/api/books/%d", created.ID), nil, &got)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if got.Author != "R. Ellis" || got.ChapterCount != 0 {
		t.Errorf("got book = %+v", got)
	}
}

func TestBooks_CreateRequiresTitle(t *testing.T) {
	e := newEnv(t)

	resp := e.do(t, http.MethodPost, "/api/books", map[string]string{"title": "   "}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestBooks_List(t *testing.T) {
	e := newEnv(t)

	var empty []storage.Book
	resp := e.do(t, http.MethodGet, "/api/books", nil, &empty)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("empty list = %v, want []", empty)
	}

	e.createBook(t, "One")
	e.createBook(t, "Two")

	var books []storage.Book
	e.do(t, http.MethodGet, "/api/books", nil, &books)
	if len(books) != 2 {
		t.Errorf("len(books) = %d, want 2", len(books))
	}
}

func TestBooks_Update(t *testing.T) {
	e := newEnv(t)
	book := e.createBook(t, "Draft Title")

	var updated storage.Book
	resp := e.do(t, http.MethodPut, fmt.Sprintf("/api/books/%d", book.ID), map[string]string{
		"title":  "Final Title",
		"author": "New Author",
	}, &updated)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if updated.Title != "Final Title" || updated.Author != "New Author" {
		t.Errorf("updated book = %+v", updated)
	}
}

func TestBooks_DeleteThenNotFound(t *testing.T) {
	e := newEnv(t)
	book := e.createBook(t, "Ephemeral")

	resp := e.do(t, http.MethodDelete, fmt.Sprintf("/api/books/%d", book.ID), nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	resp = e.do(t, http.MethodGet, fmt.Sprintf("/api/books/%d", book.ID), nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

func TestBooks_InvalidID(t *testing.T) {
	e := newEnv(t)

	resp := e.do(t, http.MethodGet, "/api/books/abc", nil, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}
