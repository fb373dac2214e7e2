// Package slides holds the immutable, ordered slide collection of one deck.
package slides

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ajstarks/deck"
	"github.com/joeblew999/deckshow/pkg/pipeline"
	"github.com/joeblew999/deckshow/runtime"
)

// ErrEmptyDeck is returned when a deck has no slides to present.
var ErrEmptyDeck = errors.New("deck has no slides")

// Slide is one rendered slide
type Slide struct {
	Number int // 1-based
	Title  string
	Text   []string
	SVG    []byte
}

// Registry is the slide collection, indexed 0..N-1. It never changes after construction.
type Registry struct {
	title  string
	slides []Slide
	xml    []byte
}

// New builds a registry from an SVG pipeline result
func New(res *pipeline.Result) (*Registry, error) {
	if res == nil || len(res.Slides) == 0 {
		return nil, ErrEmptyDeck
	}
	if res.Format != pipeline.FormatSVG {
		return nil, fmt.Errorf("registry needs svg slides, got %s", res.Format)
	}

	r := &Registry{
		title:  res.Title,
		slides: make([]Slide, len(res.Slides)),
		xml:    res.XML,
	}
	for i, svg := range res.Slides {
		s := Slide{Number: i + 1, SVG: svg}
		if res.Deck != nil && i < len(res.Deck.Slide) {
			s.Text = slideText(res.Deck.Slide[i])
			s.Title = slideTitle(res.Deck.Slide[i])
		}
		if s.Title == "" {
			s.Title = fmt.Sprintf("Slide %d", i+1)
		}
		r.slides[i] = s
	}
	return r, nil
}

// workDirProcessor is implemented by pipelines that resolve imports on disk
type workDirProcessor interface {
	ProcessWithWorkDir(ctx context.Context, source []byte, format pipeline.OutputFormat, workDir string) (*pipeline.Result, error)
}

// Load reads the decksh source at key and renders it with p.
// Imports are resolved on disk when both the storage and the pipeline allow
// it, and pre-expanded through the storage otherwise.
func Load(ctx context.Context, storage runtime.Storage, key string, p pipeline.Pipeline) (*Registry, error) {
	source, err := runtime.ReadAll(ctx, storage, key)
	if err != nil {
		return nil, fmt.Errorf("reading deck %s: %w", key, err)
	}

	var res *pipeline.Result
	fsStorage, onDisk := storage.(runtime.FilesystemStorage)
	wd, canWorkDir := p.(workDirProcessor)
	if onDisk && canWorkDir {
		full, err := fsStorage.FullPath(key)
		if err != nil {
			return nil, fmt.Errorf("resolving deck %s: %w", key, err)
		}
		res, err = wd.ProcessWithWorkDir(ctx, source, pipeline.FormatSVG, filepath.Dir(full))
		if err != nil {
			return nil, fmt.Errorf("rendering deck %s: %w", key, err)
		}
		return New(res)
	}

	if pipeline.HasImports(source) {
		source, err = pipeline.NewImportResolver(pipeline.StorageLoader(storage)).Expand(ctx, source, key)
		if err != nil {
			return nil, fmt.Errorf("expanding imports of %s: %w", key, err)
		}
	}
	res, err = p.Process(ctx, source, pipeline.FormatSVG)
	if err != nil {
		return nil, fmt.Errorf("rendering deck %s: %w", key, err)
	}
	return New(res)
}

// Len is the number of slides
func (r *Registry) Len() int {
	return len(r.slides)
}

// Title is the deck title
func (r *Registry) Title() string {
	return r.title
}

// XML is the deck markup the slides were rendered from
func (r *Registry) XML() []byte {
	return r.xml
}

// At returns the slide at 0-based index i
func (r *Registry) At(i int) (Slide, bool) {
	if i < 0 || i >= len(r.slides) {
		return Slide{}, false
	}
	return r.slides[i], true
}

// SVG returns the SVG of the slide with 1-based number n
func (r *Registry) SVG(n int) ([]byte, bool) {
	s, ok := r.At(n - 1)
	return s.SVG, ok
}

// Titles lists the slide titles in order
func (r *Registry) Titles() []string {
	titles := make([]string, len(r.slides))
	for i, s := range r.slides {
		titles[i] = s.Title
	}
	return titles
}

// slideText collects text and list lines in drawing order
func slideText(s deck.Slide) []string {
	var lines []string
	for _, t := range s.Text {
		for _, l := range strings.Split(t.Tdata, "\n") {
			if l = strings.TrimSpace(l); l != "" {
				lines = append(lines, l)
			}
		}
	}
	for _, l := range s.List {
		for _, li := range l.Li {
			if text := strings.TrimSpace(li.ListText); text != "" {
				lines = append(lines, "- "+text)
			}
		}
	}
	return lines
}

// slideTitle is the largest text on the slide
func slideTitle(s deck.Slide) string {
	var title string
	var size float64
	for _, t := range s.Text {
		text := strings.TrimSpace(t.Tdata)
		if text != "" && t.Sp > size {
			title, size = text, t.Sp
		}
	}
	if i := strings.IndexByte(title, '\n'); i >= 0 {
		title = title[:i]
	}
	return title
}
