package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"booklab/internal/autosave"
	"booklab/internal/llm"
	"booklab/internal/pdf"
	"booklab/internal/pipeline"
	"booklab/internal/secret"
	"booklab/internal/storage"
)

func testDeps(t *testing.T) *Deps {
	t.Helper()

	db, err := storage.New(t.TempDir() + "/test.db")
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
	switcher := llm.NewSwitcher()
	saver := autosave.New(chapterRepo, time.Second)
	t.Cleanup(saver.Close)

	return &Deps{
		DB:       db,
		Books:    bookRepo,
		Chapters: chapterRepo,
		Notes:    noteRepo,
		Topics:   topicRepo,
		Settings: storage.NewSettingsRepo(db, codec),
		Switcher: switcher,
		Pipeline: pipeline.New(switcher, noteRepo, topicRepo),
		Saver:    saver,
		Renderer: pdf.NewRenderer(bookRepo, chapterRepo, t.TempDir()),
	}
}

func TestNewRouter(t *testing.T) {
	router := NewRouter(testDeps(t))
	if router == nil {
		t.Fatal("NewRouter() returned nil")
	}
}

func TestRouter_Routes(t *testing.T) {
	router := NewRouter(testDeps(t))

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{
			name:       "GET /api/health exists",
			method:     http.MethodGet,
			path:       "/api/health",
			wantStatus: http.StatusOK,
		},
		{
			name:       "GET /api/books exists",
			method:     http.MethodGet,
			path:       "/api/books",
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST /api/books rejects empty body",
			method:     http.MethodPost,
			path:       "/api/books",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "GET /api/topics exists",
			method:     http.MethodGet,
			path:       "/api/topics",
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST /api/ai/extract-topics rejects empty body",
			method:     http.MethodPost,
			path:       "/api/ai/extract-topics",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "GET /api/settings/author_name exists",
			method:     http.MethodGet,
			path:       "/api/settings/author_name",
			wantStatus: http.StatusOK,
		},
		{
			name:       "unknown route",
			method:     http.MethodGet,
			path:       "/api/nope",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "DELETE /api/books method not allowed",
			method:     http.MethodDelete,
			path:       "/api/books",
			wantStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Router %s %s status = %v, want %v", tt.method, tt.path, w.Code, tt.wantStatus)
			}
		})
	}
}

func TestRouter_MiddlewareApplied(t *testing.T) {
	router := NewRouter(testDeps(t))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	// Check CORS headers are present
	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("Router should apply CORS middleware")
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("Router should apply the logger middleware")
	}
}
