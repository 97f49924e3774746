package handlers

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"booklab/internal/autosave"
	"booklab/internal/storage"
)

// ChapterHandler handles HTTP requests for chapters.
type ChapterHandler struct {
	chapters storage.ChapterStore
	saver    *autosave.Saver
	markdown goldmark.Markdown
}

// NewChapterHandler creates a new ChapterHandler.
func NewChapterHandler(chapters storage.ChapterStore, saver *autosave.Saver) *ChapterHandler {
	return &ChapterHandler{
		chapters: chapters,
		saver:    saver,
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		),
	}
}

// ChapterRequest represents the payload for creating a chapter.
type ChapterRequest struct {
	Title   string `json:"title"`
	Outline string `json:"outline"`
	Content string `json:"content"`
	Status  string `json:"status"`
}

// ReorderRequest carries the full desired chapter order for a book.
type ReorderRequest struct {
	ChapterIDs []int64 `json:"chapter_ids"`
}

// PreviewResponse carries rendered markdown.
type PreviewResponse struct {
	HTML string `json:"html"`
}

// ListByBook returns a book's chapters ordered by chapter number.
func (h *ChapterHandler) ListByBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	bookID, err := idParam(r, "bookID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}
	chapters, err := h.chapters.ListByBook(ctx, bookID)
	if err != nil {
		handleError(ctx, w, err, "Failed to list chapters")
		return
	}
	if chapters == nil {
		chapters = []*storage.Chapter{}
	}
	respondJSON(w, http.StatusOK, chapters)
}

// Get returns a single chapter.
func (h *ChapterHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := idParam(r, "chapterID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid chapter ID")
		return
	}
	chapter, err := h.chapters.GetByID(ctx, id)
	if err != nil {
		handleError(ctx, w, err, "Failed to get chapter")
		return
	}
	respondJSON(w, http.StatusOK, chapter)
}

// Create appends a chapter at the end of the book.
func (h *ChapterHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	bookID, err := idParam(r, "bookID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}
	var req ChapterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "Title is required")
		return
	}

	chapter, err := h.chapters.Create(ctx, bookID, req.Title, req.Outline, req.Content, req.Status)
	if err != nil {
		handleError(ctx, w, err, "Failed to create chapter")
		return
	}
	respondJSON(w, http.StatusCreated, chapter)
}

// Update applies a partial chapter update immediately. Any pending
// autosave for the chapter is superseded by flushing it first.
func (h *ChapterHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := idParam(r, "chapterID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid chapter ID")
		return
	}
	var update storage.ChapterUpdate
	if err := decodeJSON(r, &update); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.saver.Flush(id)
	chapter, err := h.chapters.Update(ctx, id, update)
	if err != nil {
		handleError(ctx, w, err, "Failed to update chapter")
		return
	}
	respondJSON(w, http.StatusOK, chapter)
}

// Autosave queues a debounced partial update; the write happens after
// the chapter goes quiet.
func (h *ChapterHandler) Autosave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := idParam(r, "chapterID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid chapter ID")
		return
	}
	var update storage.ChapterUpdate
	if err := decodeJSON(r, &update); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	// Existence check keeps a typo'd ID from queueing a doomed write.
	if _, err := h.chapters.GetByID(ctx, id); err != nil {
		handleError(ctx, w, err, "Failed to queue autosave")
		return
	}

	h.saver.Queue(id, update)
	respondJSON(w, http.StatusAccepted, map[string]bool{"queued": true})
}

// Delete removes a chapter and renumbers the rest of the book.
func (h *ChapterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := idParam(r, "chapterID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid chapter ID")
		return
	}
	if err := h.chapters.Delete(ctx, id); err != nil {
		handleError(ctx, w, err, "Failed to delete chapter")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Reorder assigns new chapter numbers from the submitted ID order.
func (h *ChapterHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	bookID, err := idParam(r, "bookID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}
	var req ReorderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.ChapterIDs) == 0 {
		writeError(w, http.StatusBadRequest, "chapter_ids is required")
		return
	}

	chapters, err := h.chapters.Reorder(ctx, bookID, req.ChapterIDs)
	if err != nil {
		handleError(ctx, w, err, "Failed to reorder chapters")
		return
	}
	respondJSON(w, http.StatusOK, chapters)
}

// OutlinePreview renders the chapter's outline markdown to HTML.
func (h *ChapterHandler) OutlinePreview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := idParam(r, "chapterID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid chapter ID")
		return
	}
	chapter, err := h.chapters.GetByID(ctx, id)
	if err != nil {
		handleError(ctx, w, err, "Failed to get chapter")
		return
	}

	var buf bytes.Buffer
	if err := h.markdown.Convert([]byte(chapter.Outline), &buf); err != nil {
		handleError(ctx, w, err, "Failed to render outline")
		return
	}
	respondJSON(w, http.StatusOK, PreviewResponse{HTML: buf.String()})
}
