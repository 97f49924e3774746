package handlers

import (
	"net/http"
	"strings"

	"booklab/internal/pipeline"
	"booklab/internal/storage"
)

// NoteHandler handles HTTP requests for notes.
type NoteHandler struct {
	notes    storage.NoteStore
	pipeline *pipeline.Pipeline
}

// NewNoteHandler creates a new NoteHandler.
func NewNoteHandler(notes storage.NoteStore, p *pipeline.Pipeline) *NoteHandler {
	return &NoteHandler{notes: notes, pipeline: p}
}

// NoteRequest represents the payload for creating or updating a note.
type NoteRequest struct {
	Content string `json:"content"`
}

// ProcessRequest carries raw free-form text to split into topic-linked
// notes.
type ProcessRequest struct {
	Text string `json:"text"`
}

// List returns all notes with their linked topics.
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	notes, err := h.notes.ListAll(ctx)
	if err != nil {
		handleError(ctx, w, err, "Failed to list notes")
		return
	}
	if notes == nil {
		notes = []*storage.Note{}
	}
	respondJSON(w, http.StatusOK, notes)
}

// Get returns a single note.
func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := idParam(r, "noteID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid note ID")
		return
	}
	note, err := h.notes.GetByID(ctx, id)
	if err != nil {
		handleError(ctx, w, err, "Failed to get note")
		return
	}
	respondJSON(w, http.StatusOK, note)
}

// Create stores a single note without running topic extraction.
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req NoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "Content is required")
		return
	}

	note, err := h.notes.Create(ctx, req.Content)
	if err != nil {
		handleError(ctx, w, err, "Failed to create note")
		return
	}
	respondJSON(w, http.StatusCreated, note)
}

// Update replaces a note's content. Topic links are left as they are.
func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := idParam(r, "noteID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid note ID")
		return
	}
	var req NoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "Content is required")
		return
	}

	note, err := h.notes.UpdateContent(ctx, id, req.Content)
	if err != nil {
		handleError(ctx, w, err, "Failed to update note")
		return
	}
	respondJSON(w, http.StatusOK, note)
}

// Delete removes a note and its topic links.
func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := idParam(r, "noteID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid note ID")
		return
	}
	if err := h.notes.Delete(ctx, id); err != nil {
		handleError(ctx, w, err, "Failed to delete note")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Process splits raw text into paragraphs, extracts topics for each, and
// stores the results as topic-linked notes. Paragraphs committed before a
// mid-run failure stay committed; the partial result is still returned.
func (h *NoteHandler) Process(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ProcessRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "Text is required")
		return
	}

	result, err := h.pipeline.ProcessNotes(ctx, req.Text)
	if err != nil {
		handleError(ctx, w, err, "Failed to process notes")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// UnlinkTopic removes a single note-topic link.
func (h *NoteHandler) UnlinkTopic(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	noteID, err := idParam(r, "noteID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid note ID")
		return
	}
	topicID, err := idParam(r, "topicID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid topic ID")
		return
	}
	if err := h.notes.UnlinkTopic(ctx, noteID, topicID); err != nil {
		handleError(ctx, w, err, "Failed to unlink topic")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
