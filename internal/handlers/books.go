package handlers

import (
	"net/http"
	"strings"

	"booklab/internal/storage"
)

// BookHandler handles HTTP requests for book projects.
type BookHandler struct {
	books storage.BookStore
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(books storage.BookStore) *BookHandler {
	return &BookHandler{books: books}
}

// BookRequest represents the payload for creating or updating a book.
type BookRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Author      string `json:"author"`
}

// List returns all books, most recently updated first.
func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	books, err := h.books.List(ctx)
	if err != nil {
		handleError(ctx, w, err, "Failed to list books")
		return
	}
	if books == nil {
		books = []*storage.Book{}
	}
	respondJSON(w, http.StatusOK, books)
}

// Get returns a single book with derived chapter and word counts.
func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := idParam(r, "bookID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}
	book, err := h.books.GetByID(ctx, id)
	if err != nil {
		handleError(ctx, w, err, "Failed to get book")
		return
	}
	respondJSON(w, http.StatusOK, book)
}

// Create creates a new book project.
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req BookRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "Title is required")
		return
	}

	book, err := h.books.Create(ctx, req.Title, req.Description, req.Author)
	if err != nil {
		handleError(ctx, w, err, "Failed to create book")
		return
	}
	respondJSON(w, http.StatusCreated, book)
}

// Update replaces a book's title, description, and author.
func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := idParam(r, "bookID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}
	var req BookRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "Title is required")
		return
	}

	book, err := h.books.Update(ctx, id, req.Title, req.Description, req.Author)
	if err != nil {
		handleError(ctx, w, err, "Failed to update book")
		return
	}
	respondJSON(w, http.StatusOK, book)
}

// Delete removes a book and, through the schema's cascade, its chapters.
func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := idParam(r, "bookID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}
	if err := h.books.Delete(ctx, id); err != nil {
		handleError(ctx, w, err, "Failed to delete book")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
