// Package pdf turns a book's chapters into a print-ready PDF using a
// headless Chrome instance.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"booklab/internal/contextutil"
	"booklab/internal/storage"
)

// ErrNoChapters is returned when a book has nothing to export.
var ErrNoChapters = errors.New("no chapters to generate PDF from")

// Letter paper, in inches.
const (
	letterWidth  = 8.5
	letterHeight = 11.0
)

const footerTemplate = `<div style="font-size: 10px; text-align: center; width: 100%; color: #666;">
  <span class="pageNumber"></span> / <span class="totalPages"></span>
</div>`

var filenameSanitizer = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Result describes a generated PDF on disk.
type Result struct {
	Path     string `json:"path"`
	Filename string `json:"filename"`
}

// Renderer exports books as PDF files into a fixed output directory.
type Renderer struct {
	books    storage.BookStore
	chapters storage.ChapterStore
	outDir   string
}

// NewRenderer creates a renderer that writes PDFs into outDir.
func NewRenderer(books storage.BookStore, chapters storage.ChapterStore, outDir string) *Renderer {
	return &Renderer{
		books:    books,
		chapters: chapters,
		outDir:   outDir,
	}
}

// Render builds the book's print layout, prints it through headless
// Chrome, and writes the PDF to the output directory.
func (r *Renderer) Render(ctx context.Context, bookID int64) (*Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	book, err := r.books.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	chapters, err := r.chapters.ListByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if len(chapters) == 0 {
		return nil, ErrNoChapters
	}

	html, err := buildDocument(book, chapters, time.Now())
	if err != nil {
		return nil, err
	}

	logger.Info("generating PDF",
		slog.Int64("book_id", bookID),
		slog.Int("chapters", len(chapters)))

	data, err := r.print(ctx, html)
	if err != nil {
		return nil, fmt.Errorf("printing PDF: %w", err)
	}

	filename := fmt.Sprintf("%s_%d.pdf",
		filenameSanitizer.ReplaceAllString(book.Title, "_"),
		time.Now().UnixMilli())
	path := filepath.Join(r.outDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("writing PDF file: %w", err)
	}

	logger.Info("PDF written", slog.String("path", path))
	return &Result{Path: path, Filename: filename}, nil
}

// print loads the HTML into a fresh headless Chrome tab and prints it
// to Letter pages with one-inch margins and a page-number footer.
func (r *Renderer) print(ctx context.Context, html string) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	var data []byte
	err := chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPaperWidth(letterWidth).
				WithPaperHeight(letterHeight).
				WithMarginTop(1).
				WithMarginRight(1).
				WithMarginBottom(1).
				WithMarginLeft(1).
				WithPrintBackground(true).
				WithDisplayHeaderFooter(true).
				WithHeaderTemplate("<div></div>").
				WithFooterTemplate(footerTemplate).
				Do(ctx)
			if err != nil {
				return err
			}
			data = buf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return data, nil
}
