package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"booklab/internal/pdf"
)

// ExportHandler handles PDF generation and database backups.
type ExportHandler struct {
	renderer *pdf.Renderer
	dbPath   string
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(renderer *pdf.Renderer, dbPath string) *ExportHandler {
	return &ExportHandler{renderer: renderer, dbPath: dbPath}
}

// BackupRequest names a filesystem path to copy the database to or from.
type BackupRequest struct {
	Path string `json:"path"`
}

// BackupResponse reports the result of a backup operation.
type BackupResponse struct {
	Success bool   `json:"success"`
	Path    string `json:"path"`
	Message string `json:"message,omitempty"`
}

// GeneratePDF exports a book's chapters as a PDF file.
func (h *ExportHandler) GeneratePDF(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	bookID, err := idParam(r, "bookID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}

	result, err := h.renderer.Render(ctx, bookID)
	if err != nil {
		handleError(ctx, w, err, "Failed to generate PDF")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// ExportBackup copies the live database file to the requested path.
func (h *ExportHandler) ExportBackup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req BackupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Path) == "" {
		writeError(w, http.StatusBadRequest, "Path is required")
		return
	}

	if err := copyFile(h.dbPath, req.Path); err != nil {
		handleError(ctx, w, err, "Failed to export backup")
		return
	}
	respondJSON(w, http.StatusOK, BackupResponse{Success: true, Path: req.Path})
}

// ImportBackup copies a backup file over the live database. The new
// data is only guaranteed visible after a restart, since open
// connections may hold pages of the old file.
func (h *ExportHandler) ImportBackup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req BackupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Path) == "" {
		writeError(w, http.StatusBadRequest, "Path is required")
		return
	}
	if _, err := os.Stat(req.Path); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Backup file not readable: %v", err))
		return
	}

	if err := copyFile(req.Path, h.dbPath); err != nil {
		handleError(ctx, w, err, "Failed to import backup")
		return
	}
	respondJSON(w, http.StatusOK, BackupResponse{
		Success: true,
		Path:    h.dbPath,
		Message: "Backup imported; restart the server to load it",
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating destination directory: %w", err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copying %s to %s: %w", src, dst, err)
	}
	return out.Sync()
}
