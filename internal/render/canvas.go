package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ajstarks/deck"
	svg "github.com/ajstarks/svgo/float"
)

// canvas is one slide being drawn
type canvas struct {
	doc  *svg.SVG
	r    *Renderer
	w, h float64
}

func pct(p, m float64) float64 {
	return (p / 100.0) * m
}

// at converts percentage coordinates and size to canvas units
func (c *canvas) at(xp, yp, sp float64) (x, y, size float64) {
	return pct(xp, c.w), pct(100-yp, c.h), pct(sp, c.w)
}

// opacity maps deck opacity: 0 is opaque, negative is transparent, else percent
func opacity(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 0:
		return v / 100
	}
	return 1
}

func fill(color string, op float64) string {
	return fmt.Sprintf("fill:%s;fill-opacity:%.2f", Color(color), opacity(op))
}

func stroke(width float64, color string, op float64) string {
	return fmt.Sprintf("stroke-width:%.2fpx;stroke:%s;stroke-opacity:%.2f", width, Color(color), opacity(op))
}

func orDefault(color string) string {
	if color == "" {
		return defaultColor
	}
	return color
}

func (c *canvas) background(slide deck.Slide) {
	if slide.Bg != "" {
		c.doc.Rect(0, 0, c.w, c.h, fill(slide.Bg, 0))
	}
	if slide.Gradcolor1 != "" && slide.Gradcolor2 != "" {
		c.doc.Def()
		c.doc.LinearGradient("slidegrad", 0, 0, 0, 100, []svg.Offcolor{
			{Offset: 0, Color: Color(slide.Gradcolor1), Opacity: 1.0},
			{Offset: 100, Color: Color(slide.Gradcolor2), Opacity: 1.0},
		})
		c.doc.DefEnd()
		c.doc.Rect(0, 0, c.w, c.h, "fill:url(#slidegrad)")
	}
}

func (c *canvas) image(im deck.Image, fg string) {
	x, y, _ := c.at(im.Xp, im.Yp, 0)
	iw, ih := float64(im.Width), float64(im.Height)
	if im.Scale > 0 {
		iw *= im.Scale / 100
		ih *= im.Scale / 100
	}
	if im.Autoscale == "on" && iw > 0 && iw < c.w {
		ih = (c.w / iw) * ih
		iw = c.w
	}
	c.doc.Image(x-iw/2, y-ih/2, int(iw), int(ih), im.Name)

	if im.Caption == "" {
		return
	}
	size := deck.Pwidth(im.Sp, c.w, pct(2.0, c.w))
	font, color, align := im.Font, im.Color, im.Align
	if font == "" {
		font = "sans"
	}
	if color == "" {
		color = fg
	}
	if align == "" {
		align = "center"
	}
	c.showtext(x, y+ih/2+size*2, im.Caption, size, font, color, align)
}

// boxSize resolves width/height percentages; hr makes height relative to width
func (c *canvas) boxSize(wp, hp, hr float64) (float64, float64) {
	w := pct(wp, c.w)
	if hr != 0 {
		return w, pct(hr, w)
	}
	return w, pct(hp, c.h)
}

func (c *canvas) rect(r deck.Rect) {
	x, y, _ := c.at(r.Xp, r.Yp, 0)
	w, h := c.boxSize(r.Wp, r.Hp, r.Hr)
	c.doc.Rect(x-w/2, y-h/2, w, h, fill(orDefault(r.Color), r.Opacity))
}

func (c *canvas) ellipse(e deck.Ellipse) {
	x, y, _ := c.at(e.Xp, e.Yp, 0)
	w, h := c.boxSize(e.Wp, e.Hp, e.Hr)
	c.doc.Ellipse(x, y, w/2, h/2, fill(orDefault(e.Color), e.Opacity))
}

func strokeWidth(sw float64) float64 {
	if sw == 0 {
		return 2.0
	}
	return sw
}

func (c *canvas) curve(cv deck.Curve) {
	x1, y1, sw := c.at(cv.Xp1, cv.Yp1, cv.Sp)
	x2, y2, _ := c.at(cv.Xp2, cv.Yp2, 0)
	x3, y3, _ := c.at(cv.Xp3, cv.Yp3, 0)
	c.doc.Qbez(x1, y1, x2, y2, x3, y3, "fill:none;"+stroke(strokeWidth(sw), orDefault(cv.Color), cv.Opacity))
}

func polar(x, y, r, deg float64) (float64, float64) {
	rad := deg * math.Pi / 180.0
	return x + r*math.Cos(rad), y + r*math.Sin(rad)
}

func (c *canvas) arc(a deck.Arc) {
	x, y, sw := c.at(a.Xp, a.Yp, a.Sp)
	w := pct(a.Wp, c.w) / 2
	h := pct(a.Hp, c.w) / 2
	sx, sy := polar(x, y, w, -a.A1)
	ex, ey := polar(x, y, h, -a.A2)
	c.doc.Arc(sx, sy, w, h, 0, a.A2-a.A1 >= 180, false, ex, ey, "fill:none;"+stroke(strokeWidth(sw), orDefault(a.Color), a.Opacity))
}

func (c *canvas) line(l deck.Line) {
	x1, y1, sw := c.at(l.Xp1, l.Yp1, l.Sp)
	x2, y2, _ := c.at(l.Xp2, l.Yp2, 0)
	c.doc.Line(x1, y1, x2, y2, stroke(strokeWidth(sw), orDefault(l.Color), l.Opacity))
}

func (c *canvas) polygon(p deck.Polygon) {
	xs := strings.Fields(p.XC)
	ys := strings.Fields(p.YC)
	if len(xs) != len(ys) || len(xs) < 3 {
		return
	}
	px := make([]float64, len(xs))
	py := make([]float64, len(ys))
	for i := range xs {
		xv, _ := strconv.ParseFloat(xs[i], 64)
		yv, _ := strconv.ParseFloat(ys[i], 64)
		px[i] = pct(xv, c.w)
		py[i] = pct(100-yv, c.h)
	}
	c.doc.Polygon(px, py, fill(orDefault(p.Color), p.Opacity))
}
