package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/deckshow/pkg/pipeline"
	"github.com/joeblew999/deckshow/runtime"
)

type fakeDeck struct {
	title  string
	slides []string
}

func (d fakeDeck) Len() int      { return len(d.slides) }
func (d fakeDeck) Title() string { return d.title }
func (d fakeDeck) XML() []byte   { return []byte("<deck/>") }

func (d fakeDeck) SVG(n int) ([]byte, bool) {
	if n < 1 || n > len(d.slides) {
		return nil, false
	}
	return []byte(d.slides[n-1]), true
}

var sample = fakeDeck{
	title:  "STEAM en la Escuela",
	slides: []string{`<svg id="s1"></svg>`, `<svg id="s2"></svg>`, `<svg id="s3"></svg>`},
}

// fakeRenderer is a pipeline that can also render pages
type fakeRenderer struct {
	formats []pipeline.OutputFormat
	err     error
	calls   []string
}

func (f *fakeRenderer) Process(ctx context.Context, source []byte, format pipeline.OutputFormat) (*pipeline.Result, error) {
	return nil, errors.New("not used")
}

func (f *fakeRenderer) SupportedFormats() []pipeline.OutputFormat { return f.formats }

func (f *fakeRenderer) RenderPages(ctx context.Context, xmlData []byte, format pipeline.OutputFormat, first, last int) ([][]byte, error) {
	f.calls = append(f.calls, fmt.Sprintf("%s %d-%d", format, first, last))
	if f.err != nil {
		return nil, f.err
	}
	if format == pipeline.FormatPDF {
		return [][]byte{[]byte("%PDF-1.4")}, nil
	}
	var pages [][]byte
	for i := first; i <= last; i++ {
		pages = append(pages, []byte(fmt.Sprintf("png %d", i)))
	}
	return pages, nil
}

func logTo(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, nil))
}

func TestPrintPDF(t *testing.T) {
	r := &fakeRenderer{formats: []pipeline.OutputFormat{pipeline.FormatSVG, pipeline.FormatPDF}}
	doc, err := New(sample, r, nil).Print(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "steam-en-la-escuela.pdf", doc.Name)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.Equal(t, "%PDF-1.4", string(doc.Data))
	assert.Equal(t, []string{"pdf 1-3"}, r.calls)
}

func TestPrintFallsBackToHTML(t *testing.T) {
	tests := []struct {
		name string
		p    pipeline.Pipeline
	}{
		{"no pipeline", nil},
		{"no pdf support", &fakeRenderer{formats: []pipeline.OutputFormat{pipeline.FormatSVG}}},
		{"renderer fails", &fakeRenderer{formats: []pipeline.OutputFormat{pipeline.FormatPDF}, err: errors.New("boom")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := New(sample, tt.p, logTo(&bytes.Buffer{})).Print(context.Background())
			require.NoError(t, err)

			assert.Equal(t, "steam-en-la-escuela.html", doc.Name)
			html := string(doc.Data)
			assert.Contains(t, html, "<title>STEAM en la Escuela</title>")
			assert.Contains(t, html, `<section class="page"><svg id="s1"></svg></section>`)
			assert.Equal(t, 3, bytes.Count(doc.Data, []byte(`class="page"`)))
		})
	}
}

func TestSlideImage(t *testing.T) {
	r := &fakeRenderer{formats: []pipeline.OutputFormat{pipeline.FormatPNG}}
	doc, err := New(sample, r, nil).SlideImage(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "slide-2.png", doc.Name)
	assert.Equal(t, "png 2", string(doc.Data))
}

func TestSlideImageWithoutRenderer(t *testing.T) {
	var logs bytes.Buffer
	e := New(sample, &fakeRenderer{formats: []pipeline.OutputFormat{pipeline.FormatSVG}}, logTo(&logs))

	_, err := e.SlideImage(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNoRenderer)
	assert.Contains(t, logs.String(), "slide capture skipped")

	_, err = e.SlideImage(context.Background(), 4)
	assert.ErrorIs(t, err, ErrUnknownSlide)
}

func TestExportSVG(t *testing.T) {
	ctx := context.Background()
	out := runtime.NewMemoryStorage()
	var progress bytes.Buffer

	keys, err := New(sample, nil, nil).ExportSVG(ctx, out, "build", &progress)
	require.NoError(t, err)
	assert.Equal(t, []string{"build/slide-001.svg", "build/slide-002.svg", "build/slide-003.svg"}, keys)

	got, err := runtime.ReadAll(ctx, out, "build/slide-002.svg")
	require.NoError(t, err)
	assert.Equal(t, `<svg id="s2"></svg>`, string(got))
}

func TestExportSVGCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	keys, err := New(sample, nil, nil).ExportSVG(ctx, runtime.NewMemoryStorage(), "", io.Discard)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, keys)
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "presentation", slug(""))
	assert.Equal(t, "steam-2026", slug("  STEAM -- 2026! "))
	assert.Equal(t, "educación", slug("Educación"))
}
