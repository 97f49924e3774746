package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"booklab/internal/autosave"
	bookhttp "booklab/internal/http"
	"booklab/internal/llm"
	"booklab/internal/pdf"
	"booklab/internal/pipeline"
	"booklab/internal/secret"
	"booklab/internal/storage"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// env wires the full API against a temp database for handler tests.
type env struct {
	server   *httptest.Server
	settings *storage.SettingsRepo
	chapters *storage.ChapterRepo
	notes    *storage.NoteRepo
	topics   *storage.TopicRepo
	switcher *llm.Switcher
	dbPath   string
}

func newEnv(t *testing.T) *env {
	t.Helper()

	dbPath := t.TempDir() + "/test.db"
	db, err := storage.New(dbPath)
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	if err := storage.Migrate(db); err != nil {
		t.Fatalf("storage.Migrate() error = %v", err)
	}

	codec, err := secret.NewCodec()
	if err != nil {
		t.Fatalf("secret.NewCodec() error = %v", err)
	}

	bookRepo := storage.NewBookRepo(db)
	chapterRepo := storage.NewChapterRepo(db)
	noteRepo := storage.NewNoteRepo(db)
	topicRepo := storage.NewTopicRepo(db)
	settingsRepo := storage.NewSettingsRepo(db, codec)

	switcher := llm.NewSwitcher()
	pipe := pipeline.New(switcher, noteRepo, topicRepo)
	saver := autosave.New(chapterRepo, 10*time.Millisecond)
	t.Cleanup(saver.Close)
	renderer := pdf.NewRenderer(bookRepo, chapterRepo, t.TempDir())

	router := bookhttp.NewRouter(&bookhttp.Deps{
		DB:       db,
		DBPath:   dbPath,
		Books:    bookRepo,
		Chapters: chapterRepo,
		Notes:    noteRepo,
		Topics:   topicRepo,
		Settings: settingsRepo,
		Switcher: switcher,
		Pipeline: pipe,
		Saver:    saver,
		Renderer: renderer,
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &env{
		server:   server,
		settings: settingsRepo,
		chapters: chapterRepo,
		notes:    noteRepo,
		topics:   topicRepo,
		switcher: switcher,
		dbPath:   dbPath,
	}
}

// configureOllama points the provider at a fake Ollama that answers every
// chat request with reply.
func (e *env) configureOllama(t *testing.T, reply string) {
	t.Helper()

	fake := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"role": "assistant", "content": reply},
		})
	}))
	t.Cleanup(fake.Close)

	ctx := context.Background()
	if err := e.settings.Set(ctx, storage.SettingLLMProvider, "ollama"); err != nil {
		t.Fatalf("Set(llm_provider) error = %v", err)
	}
	if err := e.settings.Set(ctx, storage.SettingOllamaURL, fake.URL); err != nil {
		t.Fatalf("Set(ollama_url) error = %v", err)
	}
	if err := e.switcher.Reload(ctx, e.settings, ""); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
}

// do issues a JSON request against the test server and decodes the
// response body into out when out is non-nil.
func (e *env) do(t *testing.T, method, path string, body, out any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.server.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading response body: %v", err)
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			t.Fatalf("decoding %s %s response %q: %v", method, path, raw, err)
		}
	}
	return resp
}

func (e *env) createBook(t *testing.T, title string) *storage.Book {
	t.Helper()

	var book storage.Book
	resp := e.do(t, http.MethodPost, "/api/books", map[string]string{"title": title}, &book)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("creating book: status = %d", resp.StatusCode)
	}
	return &book
}

func (e *env) createChapter(t *testing.T, bookID int64, title string) *storage.Chapter {
	t.Helper()

	var chapter storage.Chapter
	path := fmt.Sprintf("/api/books/%d/chapters", bookID)
	resp := e.do(t, http.MethodPost, path, map[string]string{"title": title}, &chapter)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("creating chapter: status = %d", resp.StatusCode)
	}
	return &chapter
}
