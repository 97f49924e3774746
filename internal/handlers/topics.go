package handlers

import (
	"net/http"

	"booklab/internal/storage"
)

// TopicHandler handles HTTP requests for topics.
type TopicHandler struct {
	topics storage.TopicStore
	notes  storage.NoteStore
}

// NewTopicHandler creates a new TopicHandler.
func NewTopicHandler(topics storage.TopicStore, notes storage.NoteStore) *TopicHandler {
	return &TopicHandler{topics: topics, notes: notes}
}

// List returns all topics with note counts, ordered by name.
func (h *TopicHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	topics, err := h.topics.ListAll(ctx)
	if err != nil {
		handleError(ctx, w, err, "Failed to list topics")
		return
	}
	if topics == nil {
		topics = []*storage.Topic{}
	}
	respondJSON(w, http.StatusOK, topics)
}

// Get returns a single topic.
func (h *TopicHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := idParam(r, "topicID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid topic ID")
		return
	}
	topic, err := h.topics.GetByID(ctx, id)
	if err != nil {
		handleError(ctx, w, err, "Failed to get topic")
		return
	}
	respondJSON(w, http.StatusOK, topic)
}

// Notes returns the notes linked to a topic.
func (h *TopicHandler) Notes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := idParam(r, "topicID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid topic ID")
		return
	}
	// 404 for an unknown topic rather than an empty list
	if _, err := h.topics.GetByID(ctx, id); err != nil {
		handleError(ctx, w, err, "Failed to get topic")
		return
	}
	notes, err := h.notes.ListByTopic(ctx, id)
	if err != nil {
		handleError(ctx, w, err, "Failed to list topic notes")
		return
	}
	if notes == nil {
		notes = []*storage.Note{}
	}
	respondJSON(w, http.StatusOK, notes)
}
