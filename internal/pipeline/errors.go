package pipeline

import "errors"

// Operation-specific error kinds. Each pipeline operation wraps a gateway
// or store failure in its own kind so callers can tell which step broke;
// the underlying cause stays reachable through errors.Is/As.
var (
	// ErrTopicExtraction is returned when topic extraction fails.
	ErrTopicExtraction = errors.New("failed to extract topics")
	// ErrNoteProcessing is returned when persisting a processed paragraph fails.
	ErrNoteProcessing = errors.New("failed to process notes")
	// ErrOutlineGeneration is returned when outline generation fails.
	ErrOutlineGeneration = errors.New("failed to generate outline")
	// ErrChapterGeneration is returned when chapter generation fails.
	ErrChapterGeneration = errors.New("failed to generate chapter")
	// ErrRefinement is returned when outline or content refinement fails.
	ErrRefinement = errors.New("failed to refine text")
)
