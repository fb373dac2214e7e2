package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ajstarks/decksh"
	"github.com/joeblew999/deckshow/internal/render"
)

// InProcessPipeline runs decksh and the SVG renderer inside the current
// process. It works everywhere Go runs (native, browser, Cloudflare, WASI)
// but only produces SVG, since PNG and PDF need fonts on disk.
type InProcessPipeline struct {
	renderer *render.Renderer
}

// NewInProcessPipeline creates a pipeline rendering with opts
func NewInProcessPipeline(opts render.Options) *InProcessPipeline {
	return &InProcessPipeline{renderer: render.New(opts)}
}

// Process implements Pipeline.Process.
// decksh imports must be expanded beforehand with ImportResolver.
func (p *InProcessPipeline) Process(ctx context.Context, source []byte, format OutputFormat) (*Result, error) {
	if format != FormatSVG {
		return nil, fmt.Errorf("%w %s: in-process pipeline only renders svg", ErrUnsupportedFormat, format)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var deckXML bytes.Buffer
	if err := decksh.Process(&deckXML, bytes.NewReader(source)); err != nil {
		return nil, fmt.Errorf("decksh processing failed: %w", err)
	}

	d, err := p.renderer.Parse(deckXML.Bytes())
	if err != nil {
		return nil, err
	}

	return &Result{
		Slides:     p.renderer.All(d),
		Format:     FormatSVG,
		Title:      d.Title,
		SlideCount: len(d.Slide),
		XML:        deckXML.Bytes(),
		Deck:       d,
	}, nil
}

// SupportedFormats implements Pipeline.SupportedFormats
func (p *InProcessPipeline) SupportedFormats() []OutputFormat {
	return []OutputFormat{FormatSVG}
}
