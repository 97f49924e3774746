package pipeline

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_completer.go -package=mocks booklab/internal/pipeline Completer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"booklab/internal/contextutil"
	"booklab/internal/llm"
	"booklab/internal/storage"
)

// Completer is the chat-completion capability the pipeline consumes.
// This interface is defined from the pipeline's perspective (consumer-first);
// llm.Provider satisfies it.
type Completer interface {
	Complete(ctx context.Context, messages []llm.Message, temperature float64, maxTokens int) (string, error)
}

// minParagraphLength is the cutoff below which a pasted paragraph is
// treated as a fragment and skipped.
const minParagraphLength = 21

// previewLength is how much of a processed paragraph is echoed back in
// results.
const previewLength = 100

// ParagraphResult describes one processed paragraph.
type ParagraphResult struct {
	NoteID  int64    `json:"noteId"`
	Topics  []string `json:"topics"`
	Preview string   `json:"content"`
}

// ProcessResult is the outcome of a ProcessNotes run.
type ProcessResult struct {
	ProcessedCount int               `json:"processedCount"`
	Results        []ParagraphResult `json:"results"`
}

// Pipeline turns raw note text into persisted, topic-linked records and
// drives outline/chapter generation and refinement. Every operation is a
// single forward pass over the gateway plus store writes; nothing retries.
type Pipeline struct {
	completer Completer
	notes     storage.NoteStore
	topics    storage.TopicStore
	logger    *slog.Logger
}

// New creates a Pipeline.
func New(completer Completer, notes storage.NoteStore, topics storage.TopicStore) *Pipeline {
	return &Pipeline{
		completer: completer,
		notes:     notes,
		topics:    topics,
		logger:    slog.Default(),
	}
}

// ExtractTopics asks the model for 1-3 topics in the given text and returns
// them as a list. Duplicates from the model are kept verbatim; empty
// entries are dropped. The returned slice is never nil.
func (p *Pipeline) ExtractTopics(ctx context.Context, text string) ([]string, error) {
	response, err := p.completer.Complete(ctx, []llm.Message{
		{Role: "system", Content: topicSystemPrompt},
		{Role: "user", Content: topicUserPrompt(text)},
	}, 0.7, 100)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTopicExtraction, err)
	}

	topics := []string{}
	for _, raw := range strings.Split(response, ",") {
		if topic := strings.TrimSpace(raw); topic != "" {
			topics = append(topics, topic)
		}
	}
	return topics, nil
}

// ProcessNotes splits raw text into paragraphs on blank lines, skips
// fragments shorter than the minimum length, and for each surviving
// paragraph, in input order: extracts topics, persists a note, and links it
// to each topic (creating topics as needed).
//
// Paragraphs commit independently: a failure partway through leaves
// earlier notes and topics in place, and the error reports which step
// broke. The returned result's count reflects committed paragraphs only.
func (p *Pipeline) ProcessNotes(ctx context.Context, rawText string) (*ProcessResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	var paragraphs []string
	for _, raw := range strings.Split(rawText, "\n\n") {
		paragraph := strings.TrimSpace(raw)
		if len([]rune(paragraph)) >= minParagraphLength {
			paragraphs = append(paragraphs, paragraph)
		}
	}

	result := &ProcessResult{Results: []ParagraphResult{}}
	for _, paragraph := range paragraphs {
		topics, err := p.ExtractTopics(ctx, paragraph)
		if err != nil {
			return result, err
		}

		note, err := p.notes.Create(ctx, paragraph)
		if err != nil {
			return result, fmt.Errorf("%w: %w", ErrNoteProcessing, err)
		}

		for _, topicName := range topics {
			topic, err := p.topics.CreateOrGet(ctx, topicName)
			if err != nil {
				return result, fmt.Errorf("%w: %w", ErrNoteProcessing, err)
			}
			if err := p.notes.LinkTopic(ctx, note.ID, topic.ID); err != nil {
				return result, fmt.Errorf("%w: %w", ErrNoteProcessing, err)
			}
		}

		result.Results = append(result.Results, ParagraphResult{
			NoteID:  note.ID,
			Topics:  topics,
			Preview: preview(paragraph),
		})
		result.ProcessedCount++

		logger.InfoContext(ctx, "paragraph processed",
			"note_id", note.ID, "topics", len(topics))
	}

	return result, nil
}

// GenerateOutline asks the model for a structured chapter outline built
// from the topic's notes. The result is not persisted; the caller decides
// where it goes.
func (p *Pipeline) GenerateOutline(ctx context.Context, topicName string, notes []*storage.Note) (string, error) {
	outline, err := p.completer.Complete(ctx, []llm.Message{
		{Role: "system", Content: outlineSystemPrompt},
		{Role: "user", Content: outlineUserPrompt(topicName, notes)},
	}, 0.7, 1000)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrOutlineGeneration, err)
	}
	return outline, nil
}

// RefineOutline asks the model to revise an outline per free-text
// instructions while keeping its overall structure.
func (p *Pipeline) RefineOutline(ctx context.Context, outline, instructions string) (string, error) {
	refined, err := p.completer.Complete(ctx, []llm.Message{
		{Role: "system", Content: refineOutlineSystemPrompt},
		{Role: "user", Content: refineOutlineUserPrompt(outline, instructions)},
	}, 0.7, 1000)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRefinement, err)
	}
	return refined, nil
}

// GenerateChapter asks the model for full chapter prose in HTML, built from
// an outline and source notes. Runs hotter and longer than the outline
// operations.
func (p *Pipeline) GenerateChapter(ctx context.Context, outline string, notes []*storage.Note) (string, error) {
	content, err := p.completer.Complete(ctx, []llm.Message{
		{Role: "system", Content: chapterSystemPrompt},
		{Role: "user", Content: chapterUserPrompt(outline, notes)},
	}, 0.8, 4000)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrChapterGeneration, err)
	}
	return content, nil
}

// RefineContent asks the model to revise a chapter text fragment per
// free-text instructions, returned as HTML.
func (p *Pipeline) RefineContent(ctx context.Context, content, instructions string) (string, error) {
	refined, err := p.completer.Complete(ctx, []llm.Message{
		{Role: "system", Content: refineContentSystemPrompt},
		{Role: "user", Content: refineContentUserPrompt(content, instructions)},
	}, 0.7, 2000)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRefinement, err)
	}
	return refined, nil
}

// preview truncates paragraph content for result reporting.
func preview(content string) string {
	runes := []rune(content)
	if len(runes) > previewLength {
		runes = runes[:previewLength]
	}
	return string(runes) + "..."
}
