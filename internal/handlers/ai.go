package handlers

import (
	"net/http"
	"strings"

	"booklab/internal/pipeline"
	"booklab/internal/storage"
)

// AIHandler handles HTTP requests for the generation pipeline.
type AIHandler struct {
	pipeline *pipeline.Pipeline
	topics   storage.TopicStore
	notes    storage.NoteStore
}

// NewAIHandler creates a new AIHandler.
func NewAIHandler(p *pipeline.Pipeline, topics storage.TopicStore, notes storage.NoteStore) *AIHandler {
	return &AIHandler{pipeline: p, topics: topics, notes: notes}
}

// ExtractRequest carries text for topic extraction.
type ExtractRequest struct {
	Text string `json:"text"`
}

// ExtractResponse carries the extracted topic names.
type ExtractResponse struct {
	Topics []string `json:"topics"`
}

// OutlineRequest identifies the topic to outline.
type OutlineRequest struct {
	TopicID int64 `json:"topic_id"`
}

// OutlineResponse carries generated or refined outline markdown.
type OutlineResponse struct {
	Outline string `json:"outline"`
}

// RefineOutlineRequest carries an outline and refinement instructions.
type RefineOutlineRequest struct {
	Outline      string `json:"outline"`
	Instructions string `json:"instructions"`
}

// ChapterGenRequest carries the outline and source notes for a chapter
// draft.
type ChapterGenRequest struct {
	Outline string  `json:"outline"`
	NoteIDs []int64 `json:"note_ids"`
}

// ContentResponse carries generated or refined chapter prose.
type ContentResponse struct {
	Content string `json:"content"`
}

// RefineContentRequest carries chapter prose and refinement
// instructions.
type RefineContentRequest struct {
	Content      string `json:"content"`
	Instructions string `json:"instructions"`
}

// ExtractTopics returns the topic names the provider finds in the text,
// without persisting anything.
func (h *AIHandler) ExtractTopics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ExtractRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "Text is required")
		return
	}

	topics, err := h.pipeline.ExtractTopics(ctx, req.Text)
	if err != nil {
		handleError(ctx, w, err, "Failed to extract topics")
		return
	}
	respondJSON(w, http.StatusOK, ExtractResponse{Topics: topics})
}

// GenerateOutline builds a chapter outline from every note linked to
// the requested topic.
func (h *AIHandler) GenerateOutline(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req OutlineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	topic, err := h.topics.GetByID(ctx, req.TopicID)
	if err != nil {
		handleError(ctx, w, err, "Failed to get topic")
		return
	}
	notes, err := h.notes.ListByTopic(ctx, req.TopicID)
	if err != nil {
		handleError(ctx, w, err, "Failed to list topic notes")
		return
	}
	if len(notes) == 0 {
		writeError(w, http.StatusBadRequest, "Topic has no notes to outline")
		return
	}

	outline, err := h.pipeline.GenerateOutline(ctx, topic.Name, notes)
	if err != nil {
		handleError(ctx, w, err, "Failed to generate outline")
		return
	}
	respondJSON(w, http.StatusOK, OutlineResponse{Outline: outline})
}

// RefineOutline rewrites an outline per the user's instructions.
func (h *AIHandler) RefineOutline(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RefineOutlineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Outline) == "" || strings.TrimSpace(req.Instructions) == "" {
		writeError(w, http.StatusBadRequest, "Outline and instructions are required")
		return
	}

	outline, err := h.pipeline.RefineOutline(ctx, req.Outline, req.Instructions)
	if err != nil {
		handleError(ctx, w, err, "Failed to refine outline")
		return
	}
	respondJSON(w, http.StatusOK, OutlineResponse{Outline: outline})
}

// GenerateChapter drafts chapter prose from an outline and the selected
// source notes.
func (h *AIHandler) GenerateChapter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ChapterGenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Outline) == "" {
		writeError(w, http.StatusBadRequest, "Outline is required")
		return
	}

	notes, err := h.notes.GetByIDs(ctx, req.NoteIDs)
	if err != nil {
		handleError(ctx, w, err, "Failed to load notes")
		return
	}

	content, err := h.pipeline.GenerateChapter(ctx, req.Outline, notes)
	if err != nil {
		handleError(ctx, w, err, "Failed to generate chapter")
		return
	}
	respondJSON(w, http.StatusOK, ContentResponse{Content: content})
}

// RefineContent rewrites chapter prose per the user's instructions.
func (h *AIHandler) RefineContent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RefineContentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Content) == "" || strings.TrimSpace(req.Instructions) == "" {
		writeError(w, http.StatusBadRequest, "Content and instructions are required")
		return
	}

	content, err := h.pipeline.RefineContent(ctx, req.Content, req.Instructions)
	if err != nil {
		handleError(ctx, w, err, "Failed to refine content")
		return
	}
	respondJSON(w, http.StatusOK, ContentResponse{Content: content})
}
