package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ajstarks/deck"
)

// Color passes CSS colors through and converts deck's hsv(h,s,v) form to rgb
func Color(color string) string {
	if !strings.HasPrefix(color, "hsv(") || !strings.HasSuffix(color, ")") || len(color) <= 5 {
		return color
	}
	parts := strings.Split(strings.NewReplacer(" ", "", "\t", "").Replace(color[4:len(color)-1]), ",")
	if len(parts) != 3 {
		return "rgb(0,0,0)"
	}
	h, _ := strconv.ParseFloat(parts[0], 64)
	s, _ := strconv.ParseFloat(parts[1], 64)
	v, _ := strconv.ParseFloat(parts[2], 64)
	r, g, b := hsvToRGB(h, s, v)
	return fmt.Sprintf("rgb(%d,%d,%d)", r, g, b)
}

// hsvToRGB converts h in [0,360), s and v in [0,100]
func hsvToRGB(h, s, v float64) (int, int, int) {
	s /= 100
	v /= 100
	if s > 1 || v > 1 || s < 0 || v < 0 {
		return 0, 0, 0
	}
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	chroma := v * s
	sector := h / 60
	x := chroma * (1 - math.Abs(math.Mod(sector, 2)-1))

	var r, g, b float64
	switch {
	case sector <= 1:
		r, g, b = chroma, x, 0
	case sector <= 2:
		r, g, b = x, chroma, 0
	case sector <= 3:
		r, g, b = 0, chroma, x
	case sector <= 4:
		r, g, b = 0, x, chroma
	case sector <= 5:
		r, g, b = x, 0, chroma
	default:
		r, g, b = chroma, 0, x
	}
	m := v - chroma
	return int((r + m) * 255), int((g + m) * 255), int((b + m) * 255)
}

func anchor(align string) string {
	switch align {
	case "center", "middle", "mid", "c":
		return "middle"
	case "right", "end", "e":
		return "end"
	}
	return "start"
}

func (c *canvas) showtext(x, y float64, s string, size float64, font, color, align string) {
	c.doc.Text(x, y, s, `xml:space="preserve"`,
		fmt.Sprintf("fill:%s;font-size:%.2fpx;font-family:%s;text-anchor:%s", Color(color), size, c.r.font(font), anchor(align)))
}

func (c *canvas) text(t deck.Text, fg string) {
	color, font := t.Color, t.Font
	if color == "" {
		color = fg
	}
	if font == "" {
		font = "sans"
	}
	lp := t.Lp
	if lp == 0 {
		lp = linespacing
	}
	// external text files are not read; the file name is shown instead
	data := t.Tdata
	if t.File != "" {
		data = t.File
	}

	x, y, size := c.at(t.Xp, t.Yp, t.Sp)
	leading := lp * size
	lines := strings.Split(data, "\n")

	if t.Rotation > 0 {
		c.doc.RotateTranslate(x, y, t.Rotation)
	}
	switch t.Type {
	case "code":
		font = "mono"
		c.doc.Rect(x-size, y-size, c.w-x-20, float64(len(lines))*leading, fill("rgb(240,240,240)", t.Opacity))
		c.lines(x, y, leading, lines, size, font, color, t.Align)
	case "block":
		width := c.w / 2
		if t.Wp != 0 {
			width = pct(t.Wp, c.w)
		}
		c.wrap(x, y, width, size, leading, data, font, color, t.Opacity)
	default:
		c.lines(x, y, leading, lines, size, font, color, t.Align)
	}
	if t.Rotation > 0 {
		c.doc.Gend()
	}
}

func (c *canvas) lines(x, y, leading float64, lines []string, size float64, font, color, align string) {
	for _, l := range lines {
		c.showtext(x, y, l, size, font, color, align)
		y += leading
	}
}

// wrap breaks words into lines using an average glyph width of 0.65em
func (c *canvas) wrap(x, y, width, size, leading float64, s, font, color string, op float64) {
	c.doc.Gstyle(fmt.Sprintf("fill-opacity:%.2f;fill:%s;font-family:%s;font-size:%.2fpx", opacity(op), Color(color), c.r.font(font), size))
	var line string
	for _, word := range strings.Fields(s) {
		if word == "\\n" {
			y += leading
			continue
		}
		line += word + " "
		if size*float64(len(line))*0.65 > width {
			c.doc.Text(x, y, line)
			y += leading
			line = ""
		}
	}
	if line != "" {
		c.doc.Text(x, y, line)
	}
	c.doc.Gend()
}

func (c *canvas) list(l deck.List, fg string) {
	color, font := l.Color, l.Font
	if color == "" {
		color = fg
	}
	if font == "" {
		font = "sans"
	}
	lp := l.Lp
	if lp == 0 {
		lp = listspacing
	}

	x, y, size := c.at(l.Xp, l.Yp, l.Sp)
	c.doc.Gstyle(fmt.Sprintf("fill-opacity:%.2f;fill:%s;font-family:%s;font-size:%.2fpx", opacity(l.Opacity), Color(color), c.r.font(font), size))
	if l.Type == "bullet" {
		x += size
	}
	for i, item := range l.Li {
		text := item.ListText
		if l.Type == "number" {
			text = fmt.Sprintf("%d. %s", i+1, text)
		}
		if l.Type == "bullet" {
			r := size / 2
			c.doc.Circle(x-size, y-(r*2)/3, r/2, "fill:"+Color(color))
		}
		style := fmt.Sprintf("fill-opacity:%.2f", opacity(item.Opacity))
		if item.Color != "" {
			style += ";fill:" + Color(item.Color)
		}
		if item.Font != "" {
			style += ";font-family:" + c.r.font(item.Font)
		}
		if l.Align == "center" || l.Align == "c" {
			style += ";text-anchor:middle"
		}
		c.doc.Text(x, y, text, `xml:space="preserve"`, style)
		y += lp * size
	}
	c.doc.Gend()
}
