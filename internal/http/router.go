// Package http assembles the chi router for the booklab API.
package http

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"booklab/internal/autosave"
	"booklab/internal/handlers"
	"booklab/internal/llm"
	"booklab/internal/pdf"
	"booklab/internal/pipeline"
	"booklab/internal/storage"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	DB        *sql.DB
	DBPath    string
	Books     storage.BookStore
	Chapters  storage.ChapterStore
	Notes     storage.NoteStore
	Topics    storage.TopicStore
	Settings  storage.SettingsStore
	Switcher  *llm.Switcher
	Pipeline  *pipeline.Pipeline
	Saver     *autosave.Saver
	Renderer  *pdf.Renderer
	EnvAPIKey string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	books := handlers.NewBookHandler(deps.Books)
	chapters := handlers.NewChapterHandler(deps.Chapters, deps.Saver)
	notes := handlers.NewNoteHandler(deps.Notes, deps.Pipeline)
	topics := handlers.NewTopicHandler(deps.Topics, deps.Notes)
	ai := handlers.NewAIHandler(deps.Pipeline, deps.Topics, deps.Notes)
	settings := handlers.NewSettingsHandler(deps.Settings, deps.Switcher, deps.EnvAPIKey)
	export := handlers.NewExportHandler(deps.Renderer, deps.DBPath)
	health := handlers.NewHealthHandler(deps.DB, deps.Switcher)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", health)

		r.Route("/books", func(r chi.Router) {
			r.Get("/", books.List)
			r.Post("/", books.Create)
			r.Route("/{bookID}", func(r chi.Router) {
				r.Get("/", books.Get)
				r.Put("/", books.Update)
				r.Delete("/", books.Delete)
				r.Get("/chapters", chapters.ListByBook)
				r.Post("/chapters", chapters.Create)
				r.Put("/chapters/reorder", chapters.Reorder)
				r.Post("/pdf", export.GeneratePDF)
			})
		})

		r.Route("/chapters/{chapterID}", func(r chi.Router) {
			r.Get("/", chapters.Get)
			r.Put("/", chapters.Update)
			r.Delete("/", chapters.Delete)
			r.Put("/autosave", chapters.Autosave)
			r.Get("/outline/preview", chapters.OutlinePreview)
		})

		r.Route("/notes", func(r chi.Router) {
			r.Get("/", notes.List)
			r.Post("/", notes.Create)
			r.Post("/process", notes.Process)
			r.Route("/{noteID}", func(r chi.Router) {
				r.Get("/", notes.Get)
				r.Put("/", notes.Update)
				r.Delete("/", notes.Delete)
				r.Delete("/topics/{topicID}", notes.UnlinkTopic)
			})
		})

		r.Route("/topics", func(r chi.Router) {
			r.Get("/", topics.List)
			r.Route("/{topicID}", func(r chi.Router) {
				r.Get("/", topics.Get)
				r.Get("/notes", topics.Notes)
			})
		})

		r.Route("/ai", func(r chi.Router) {
			r.Post("/extract-topics", ai.ExtractTopics)
			r.Post("/generate-outline", ai.GenerateOutline)
			r.Post("/refine-outline", ai.RefineOutline)
			r.Post("/generate-chapter", ai.GenerateChapter)
			r.Post("/refine-content", ai.RefineContent)
		})

		r.Route("/settings/{key}", func(r chi.Router) {
			r.Get("/", settings.Get)
			r.Put("/", settings.Set)
		})

		r.Route("/backup", func(r chi.Router) {
			r.Post("/export", export.ExportBackup)
			r.Post("/import", export.ImportBackup)
		})
	})

	return r
}
