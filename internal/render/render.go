// Package render draws deck markup slides as SVG documents.
// The layout rules follow ajstarks' svgdeck: coordinates are percentages of
// the canvas, y grows upward, sizes are percentages of the canvas width.
package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/ajstarks/deck"
	svg "github.com/ajstarks/svgo/float"
)

const (
	linespacing  = 1.4
	listspacing  = 2.0
	defaultColor = "rgb(127,127,127)"
	defaultFg    = "black"
)

// Options holds rendering configuration
type Options struct {
	Width  int
	Height int
	// CSS font-family values for the deck font aliases
	SansFont  string
	SerifFont string
	MonoFont  string
}

// DefaultOptions renders 1920x1080 with web-safe font stacks
func DefaultOptions() Options {
	return Options{
		Width:     1920,
		Height:    1080,
		SansFont:  "Helvetica, Arial, sans-serif",
		SerifFont: "Georgia, Times, serif",
		MonoFont:  "Monaco, Consolas, monospace",
	}
}

// Renderer turns parsed decks into SVG slides
type Renderer struct {
	opts  Options
	fonts map[string]string
}

// New creates a renderer; zero dimensions fall back to the defaults
func New(opts Options) *Renderer {
	def := DefaultOptions()
	if opts.Width <= 0 {
		opts.Width = def.Width
	}
	if opts.Height <= 0 {
		opts.Height = def.Height
	}
	if opts.SansFont == "" {
		opts.SansFont = def.SansFont
	}
	if opts.SerifFont == "" {
		opts.SerifFont = def.SerifFont
	}
	if opts.MonoFont == "" {
		opts.MonoFont = def.MonoFont
	}
	return &Renderer{
		opts: opts,
		fonts: map[string]string{
			"sans":  opts.SansFont,
			"serif": opts.SerifFont,
			"mono":  opts.MonoFont,
		},
	}
}

// Parse decodes deck XML, filling in the canvas size when the deck omits it
func (r *Renderer) Parse(xmlData []byte) (*deck.Deck, error) {
	var d deck.Deck
	if err := xml.Unmarshal(xmlData, &d); err != nil {
		return nil, fmt.Errorf("parsing deck XML: %w", err)
	}
	if d.Canvas.Width == 0 {
		d.Canvas.Width = r.opts.Width
	}
	if d.Canvas.Height == 0 {
		d.Canvas.Height = r.opts.Height
	}
	return &d, nil
}

// All renders every slide of d
func (r *Renderer) All(d *deck.Deck) [][]byte {
	slides := make([][]byte, len(d.Slide))
	for i := range d.Slide {
		var buf bytes.Buffer
		r.draw(svg.New(&buf), d, i)
		slides[i] = buf.Bytes()
	}
	return slides
}

// Slide renders the slide at index n to w
func (r *Renderer) Slide(w io.Writer, d *deck.Deck, n int) error {
	if n < 0 || n >= len(d.Slide) {
		return fmt.Errorf("slide index %d out of range", n)
	}
	r.draw(svg.New(w), d, n)
	return nil
}

func (r *Renderer) font(alias string) string {
	if f, ok := r.fonts[alias]; ok {
		return f
	}
	return r.fonts["sans"]
}

func (r *Renderer) draw(doc *svg.SVG, d *deck.Deck, n int) {
	c := &canvas{
		doc: doc,
		r:   r,
		w:   float64(d.Canvas.Width),
		h:   float64(d.Canvas.Height),
	}
	slide := d.Slide[n]
	if slide.Fg == "" {
		slide.Fg = defaultFg
	}

	doc.Start(c.w, c.h)
	c.background(slide)

	// painter's order: images at the bottom, text and lists on top
	for _, im := range slide.Image {
		c.image(im, slide.Fg)
	}
	for _, rect := range slide.Rect {
		c.rect(rect)
	}
	for _, e := range slide.Ellipse {
		c.ellipse(e)
	}
	for _, cv := range slide.Curve {
		c.curve(cv)
	}
	for _, a := range slide.Arc {
		c.arc(a)
	}
	for _, l := range slide.Line {
		c.line(l)
	}
	for _, p := range slide.Polygon {
		c.polygon(p)
	}
	for _, t := range slide.Text {
		c.text(t, slide.Fg)
	}
	for _, l := range slide.List {
		c.list(l, slide.Fg)
	}

	doc.End()
}
