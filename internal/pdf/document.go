package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"booklab/internal/storage"
)

// documentData holds template data for the print layout.
type documentData struct {
	Title    string
	Author   string
	Date     string
	Chapters []chapterData
}

type chapterData struct {
	Number  int
	Title   string
	Content template.HTML
}

var documentTemplate = template.Must(template.New("book").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
  <style>
    @page {
      size: Letter;
      margin: 1in;
    }

    * {
      margin: 0;
      padding: 0;
      box-sizing: border-box;
    }

    body {
      font-family: Georgia, 'Times New Roman', serif;
      font-size: 12pt;
      line-height: 1.6;
      color: #333;
    }

    .cover-page {
      height: 100vh;
      display: flex;
      flex-direction: column;
      justify-content: center;
      align-items: center;
      text-align: center;
      page-break-after: always;
    }

    .book-title {
      font-size: 48pt;
      font-weight: bold;
      margin-bottom: 0.5in;
      font-family: 'Helvetica Neue', Arial, sans-serif;
    }

    .book-author {
      font-size: 24pt;
      color: #666;
      margin-bottom: 0.25in;
    }

    .book-date {
      font-size: 14pt;
      color: #999;
    }

    .toc-page {
      page-break-after: always;
      padding-top: 0.5in;
    }

    .toc-title {
      font-size: 24pt;
      font-weight: bold;
      margin-bottom: 0.5in;
      font-family: 'Helvetica Neue', Arial, sans-serif;
    }

    .toc-item {
      margin-bottom: 0.25in;
      padding-bottom: 0.1in;
      border-bottom: 1px solid #eee;
      display: flex;
      justify-content: space-between;
    }

    .chapter-page {
      page-break-before: always;
      padding-top: 0.5in;
    }

    .chapter-page:first-of-type {
      page-break-before: auto;
    }

    .chapter-title {
      font-size: 14pt;
      color: #666;
      margin-bottom: 0.1in;
      font-family: 'Helvetica Neue', Arial, sans-serif;
      font-weight: normal;
      text-transform: uppercase;
      letter-spacing: 2px;
    }

    .chapter-subtitle {
      font-size: 32pt;
      font-weight: bold;
      margin-bottom: 0.5in;
      font-family: 'Helvetica Neue', Arial, sans-serif;
    }

    .chapter-content {
      text-align: justify;
    }

    .chapter-content h1,
    .chapter-content h2,
    .chapter-content h3 {
      font-family: 'Helvetica Neue', Arial, sans-serif;
      margin-top: 0.3in;
      margin-bottom: 0.2in;
      page-break-after: avoid;
    }

    .chapter-content h1 {
      font-size: 18pt;
    }

    .chapter-content h2 {
      font-size: 16pt;
    }

    .chapter-content h3 {
      font-size: 14pt;
    }

    .chapter-content p {
      margin-bottom: 0.15in;
      text-indent: 0.25in;
      orphans: 3;
      widows: 3;
    }

    .chapter-content p:first-of-type {
      text-indent: 0;
    }

    .chapter-content ul,
    .chapter-content ol {
      margin-left: 0.5in;
      margin-bottom: 0.15in;
    }

    .chapter-content li {
      margin-bottom: 0.1in;
    }

    .chapter-content strong {
      font-weight: bold;
    }

    .chapter-content em {
      font-style: italic;
    }

    .chapter-content blockquote {
      margin: 0.25in 0.5in;
      padding-left: 0.25in;
      border-left: 3px solid #ddd;
      font-style: italic;
    }
  </style>
</head>
<body>
  <div class="cover-page">
    <h1 class="book-title">{{.Title}}</h1>
    {{if .Author}}<p class="book-author">{{.Author}}</p>{{end}}
    <p class="book-date">{{.Date}}</p>
  </div>

  <div class="toc-page">
    <h2 class="toc-title">Table of Contents</h2>
    {{range .Chapters}}<div class="toc-item">
      <span class="toc-entry">Chapter {{.Number}}: {{.Title}}</span>
    </div>
    {{end}}
  </div>

  {{range .Chapters}}<div class="chapter-page">
    <h1 class="chapter-title">Chapter {{.Number}}</h1>
    <h2 class="chapter-subtitle">{{.Title}}</h2>
    <div class="chapter-content">
      {{.Content}}
    </div>
  </div>
  {{end}}
</body>
</html>`))

const emptyChapterBody = template.HTML("<p>No content available.</p>")

// buildDocument assembles the printable HTML for a book: a cover page,
// a table of contents, and one section per chapter in order. Chapter
// content is stored as HTML (the generation pipeline produces marked-up
// prose) and is embedded verbatim; titles and the author are escaped.
func buildDocument(book *storage.Book, chapters []*storage.Chapter, now time.Time) (string, error) {
	data := documentData{
		Title:  book.Title,
		Author: book.Author,
		Date:   now.Format("January 2, 2006"),
	}
	for _, chapter := range chapters {
		body := emptyChapterBody
		if strings.TrimSpace(chapter.Content) != "" {
			body = template.HTML(chapter.Content)
		}
		data.Chapters = append(data.Chapters, chapterData{
			Number:  chapter.ChapterNumber,
			Title:   chapter.Title,
			Content: body,
		})
	}

	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing document template: %w", err)
	}
	return buf.String(), nil
}
