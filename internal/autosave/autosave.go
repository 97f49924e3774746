package autosave

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"booklab/internal/storage"
)

// Saver debounces chapter edits: each queued edit replaces any pending one
// for the same chapter and restarts the quiet-period timer, so a burst of
// keystrokes produces a single write after the user pauses.
// Last-writer-wins; there is a single editor.
type Saver struct {
	chapters storage.ChapterStore
	delay    time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	pending map[int64]*pendingSave
	closed  bool
}

// pendingSave is the cancellable scheduled flush for one chapter.
type pendingSave struct {
	timer  *time.Timer
	update storage.ChapterUpdate
}

// New creates a Saver that flushes after the given quiet period.
func New(chapters storage.ChapterStore, delay time.Duration) *Saver {
	return &Saver{
		chapters: chapters,
		delay:    delay,
		logger:   slog.Default(),
		pending:  make(map[int64]*pendingSave),
	}
}

// Queue buffers an update for the chapter and schedules a flush after the
// quiet period. A pending flush for the same chapter is cancelled and
// replaced.
func (s *Saver) Queue(chapterID int64, update storage.ChapterUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	if existing, ok := s.pending[chapterID]; ok {
		existing.timer.Stop()
	}

	save := &pendingSave{update: update}
	save.timer = time.AfterFunc(s.delay, func() {
		s.flush(chapterID)
	})
	s.pending[chapterID] = save
}

// Flush writes any pending update for the chapter immediately.
func (s *Saver) Flush(chapterID int64) {
	s.mu.Lock()
	save, ok := s.pending[chapterID]
	if ok {
		save.timer.Stop()
	}
	s.mu.Unlock()

	if ok {
		s.flush(chapterID)
	}
}

// Close cancels all timers and writes every pending update.
func (s *Saver) Close() {
	s.mu.Lock()
	s.closed = true
	var ids []int64
	for id, save := range s.pending {
		save.timer.Stop()
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		s.flush(id)
	}
}

// flush takes the pending update out of the slot and writes it.
func (s *Saver) flush(chapterID int64) {
	s.mu.Lock()
	save, ok := s.pending[chapterID]
	if ok {
		delete(s.pending, chapterID)
	}
	s.mu.Unlock()

	if !ok {
		return
	}

	if _, err := s.chapters.Update(context.Background(), chapterID, save.update); err != nil {
		s.logger.Error("autosave flush failed", "chapter_id", chapterID, "error", err)
	}
}
