package report

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"itsa/domain/run"
	"itsa/ports"
)

// HTMLWriter renders the markdown report to a standalone HTML page.
type HTMLWriter struct {
	path string
}

func NewHTMLWriter(path string) *HTMLWriter {
	return &HTMLWriter{path: path}
}

var _ ports.ReportWriter = (*HTMLWriter)(nil)

func (w *HTMLWriter) Name() string { return "html" }

func (w *HTMLWriter) Write(ctx context.Context, r *run.Report) error {
	doc := []byte(Render(r))

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.CompletePage})
	out := markdown.ToHTML(doc, p, renderer)

	if err := os.WriteFile(w.path, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", w.path, err)
	}
	log.Printf("[Report] Wrote HTML report to %s", w.path)
	return nil
}
