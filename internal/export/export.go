// Package export produces printable and image copies of the loaded deck.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"path"
	"strings"
	"unicode"

	"github.com/schollz/progressbar/v3"

	"github.com/joeblew999/deckshow/pkg/pipeline"
	"github.com/joeblew999/deckshow/runtime"
)

var (
	// ErrNoRenderer is returned when no renderer can produce the requested format
	ErrNoRenderer = errors.New("no renderer available")
	// ErrUnknownSlide is returned for slide numbers outside the deck
	ErrUnknownSlide = errors.New("unknown slide")
)

// Deck is the loaded presentation
type Deck interface {
	Len() int
	Title() string
	XML() []byte
	SVG(n int) ([]byte, bool)
}

// Document is an exported file
type Document struct {
	Name        string
	ContentType string
	Data        []byte
}

// Exporter renders a deck for printing and capture
type Exporter struct {
	deck     Deck
	pipeline pipeline.Pipeline
	log      *slog.Logger
}

// New creates an exporter. p may be nil, in which case only the HTML print
// page and SVG export are available.
func New(deck Deck, p pipeline.Pipeline, log *slog.Logger) *Exporter {
	if log == nil {
		log = slog.Default()
	}
	return &Exporter{deck: deck, pipeline: p, log: log}
}

func (e *Exporter) renderer(format pipeline.OutputFormat) (pipeline.PageRenderer, bool) {
	if e.pipeline == nil || !pipeline.Supports(e.pipeline, format) {
		return nil, false
	}
	r, ok := e.pipeline.(pipeline.PageRenderer)
	return r, ok
}

// Print returns the whole deck as one printable document: a PDF when a PDF
// renderer is available, otherwise an HTML page with every slide.
func (e *Exporter) Print(ctx context.Context) (Document, error) {
	if r, ok := e.renderer(pipeline.FormatPDF); ok && e.deck.Len() > 0 {
		pages, err := r.RenderPages(ctx, e.deck.XML(), pipeline.FormatPDF, 1, e.deck.Len())
		if err == nil && len(pages) == 1 {
			return Document{Name: slug(e.deck.Title()) + ".pdf", ContentType: "application/pdf", Data: pages[0]}, nil
		}
		e.log.Warn("pdf export failed, falling back to html", "error", err)
	}

	var buf bytes.Buffer
	if err := e.printHTML(&buf); err != nil {
		return Document{}, fmt.Errorf("rendering print page: %w", err)
	}
	return Document{Name: slug(e.deck.Title()) + ".html", ContentType: "text/html; charset=utf-8", Data: buf.Bytes()}, nil
}

var printPage = template.Must(template.New("print").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
@page { size: landscape; margin: 0; }
body { margin: 0; background: #fff; }
.page { page-break-after: always; break-after: page; }
.page svg { width: 100%; height: auto; display: block; }
</style>
</head>
<body onload="window.print()">
{{range .Slides}}<section class="page">{{.}}</section>
{{end}}</body>
</html>
`))

func (e *Exporter) printHTML(w io.Writer) error {
	data := struct {
		Title  string
		Slides []template.HTML
	}{Title: e.deck.Title()}
	for n := 1; n <= e.deck.Len(); n++ {
		svg, _ := e.deck.SVG(n)
		// slide SVG is produced by our own renderer
		data.Slides = append(data.Slides, template.HTML(svg))
	}
	return printPage.Execute(w, data)
}

// SlideImage captures slide n as PNG
func (e *Exporter) SlideImage(ctx context.Context, n int) (Document, error) {
	if n < 1 || n > e.deck.Len() {
		e.log.Warn("slide capture skipped", "slide", n, "error", ErrUnknownSlide)
		return Document{}, fmt.Errorf("%w: %d", ErrUnknownSlide, n)
	}
	r, ok := e.renderer(pipeline.FormatPNG)
	if !ok {
		e.log.Warn("slide capture skipped", "slide", n, "error", ErrNoRenderer)
		return Document{}, ErrNoRenderer
	}
	pages, err := r.RenderPages(ctx, e.deck.XML(), pipeline.FormatPNG, n, n)
	if err != nil {
		return Document{}, fmt.Errorf("capturing slide %d: %w", n, err)
	}
	if len(pages) != 1 {
		return Document{}, fmt.Errorf("capturing slide %d: got %d pages", n, len(pages))
	}
	return Document{
		Name:        fmt.Sprintf("slide-%d.png", n),
		ContentType: "image/png",
		Data:        pages[0],
	}, nil
}

// ExportSVG writes every slide to out as <prefix>/slide-NNN.svg and returns
// the keys written. Progress is drawn on progress when it is not nil.
func (e *Exporter) ExportSVG(ctx context.Context, out runtime.Storage, prefix string, progress io.Writer) ([]string, error) {
	if progress == nil {
		progress = io.Discard
	}
	bar := progressbar.NewOptions(e.deck.Len(),
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription("exporting slides"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	keys := make([]string, 0, e.deck.Len())
	for n := 1; n <= e.deck.Len(); n++ {
		if err := ctx.Err(); err != nil {
			return keys, err
		}
		svg, _ := e.deck.SVG(n)
		key := path.Join(prefix, fmt.Sprintf("slide-%03d.svg", n))
		if err := out.Put(ctx, key, svg, "image/svg+xml"); err != nil {
			return keys, fmt.Errorf("writing %s: %w", key, err)
		}
		keys = append(keys, key)
		bar.Add(1)
	}
	bar.Finish()
	return keys, nil
}

// slug turns a title into a file name
func slug(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		return "presentation"
	}
	return s
}
