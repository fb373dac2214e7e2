// Package pipeline defines the interface for converting decksh to various formats
package pipeline

import (
	"context"
	"errors"

	"github.com/ajstarks/deck"
)

// OutputFormat represents the target output format
type OutputFormat string

const (
	FormatSVG OutputFormat = "svg"
	FormatPNG OutputFormat = "png"
	FormatPDF OutputFormat = "pdf"
)

// ErrUnsupportedFormat is returned when a pipeline cannot produce a format.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Pipeline defines the interface for processing decksh markup
type Pipeline interface {
	// Process converts decksh source to the specified format
	Process(ctx context.Context, source []byte, format OutputFormat) (*Result, error)

	// SupportedFormats returns the formats this pipeline can generate
	SupportedFormats() []OutputFormat
}

// PageRenderer renders pages of deck XML that was already produced by decksh.
// Export uses it to print or capture without re-running decksh.
type PageRenderer interface {
	// RenderPages renders the 1-based pages first..last. PDF yields one
	// multi-page document, the other formats one entry per page.
	RenderPages(ctx context.Context, xmlData []byte, format OutputFormat, first, last int) ([][]byte, error)
}

// Result holds the output of pipeline processing
type Result struct {
	// Slides contains the rendered output for each slide
	Slides [][]byte

	// Format is the output format
	Format OutputFormat

	// Title from the deck metadata
	Title string

	// SlideCount is the number of slides
	SlideCount int

	// XML is the intermediate deck markup
	XML []byte

	// Deck is the parsed deck, used for slide text and titles
	Deck *deck.Deck
}

// Supports reports whether p can produce format
func Supports(p Pipeline, format OutputFormat) bool {
	for _, f := range p.SupportedFormats() {
		if f == format {
			return true
		}
	}
	return false
}
