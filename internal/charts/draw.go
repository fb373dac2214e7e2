package charts

import (
	"fmt"
	"io"
	"math"
	"strconv"

	svg "github.com/ajstarks/svgo/float"
)

const (
	chartWidth  = 600.0
	chartHeight = 400.0
	labelColor  = "#e0e0e0"
	gridColor   = "rgba(255,255,255,0.1)"
	fontStyle   = "font-family:sans-serif;font-size:14px;fill:" + labelColor
)

func color(spec Spec, i int) string {
	if len(spec.Colors) == 0 {
		return "#7877c6"
	}
	return spec.Colors[i%len(spec.Colors)]
}

func value(v float64, unit string) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + unit
}

func point(cx, cy, r, rad float64) (float64, float64) {
	return cx + r*math.Cos(rad), cy + r*math.Sin(rad)
}

// drawDoughnut draws one ring segment per value, clockwise from twelve o'clock,
// with a legend on the right
func drawDoughnut(w io.Writer, spec Spec) {
	doc := svg.New(w)
	doc.Start(chartWidth, chartHeight)
	doc.Gid(spec.ID)

	var total float64
	for _, v := range spec.Values {
		total += v
	}

	cx, cy := chartHeight/2, chartHeight/2
	outer := chartHeight/2 - 20
	inner := outer * 0.6

	start := -math.Pi / 2
	for i, v := range spec.Values {
		if total <= 0 || v <= 0 {
			continue
		}
		share := v / total
		style := "fill:" + color(spec, i) + ";stroke:#1a1a2e;stroke-width:2"
		if share >= 1 {
			doc.Circle(cx, cy, (outer+inner)/2, fmt.Sprintf("fill:none;stroke:%s;stroke-width:%.2f", color(spec, i), outer-inner))
			break
		}
		end := start + share*2*math.Pi
		large := 0
		if share > 0.5 {
			large = 1
		}
		ox1, oy1 := point(cx, cy, outer, start)
		ox2, oy2 := point(cx, cy, outer, end)
		ix1, iy1 := point(cx, cy, inner, end)
		ix2, iy2 := point(cx, cy, inner, start)
		d := fmt.Sprintf("M%.2f,%.2f A%.2f,%.2f 0 %d,1 %.2f,%.2f L%.2f,%.2f A%.2f,%.2f 0 %d,0 %.2f,%.2f Z",
			ox1, oy1, outer, outer, large, ox2, oy2,
			ix1, iy1, inner, inner, large, ix2, iy2)
		doc.Path(d, style)
		start = end
	}

	lx := chartHeight + 10
	for i, label := range spec.Labels {
		y := 40 + float64(i)*30
		doc.Rect(lx, y-12, 14, 14, "fill:"+color(spec, i))
		text := label
		if i < len(spec.Values) {
			text += " " + value(spec.Values[i], spec.Unit)
		}
		doc.Text(lx+22, y, text, fontStyle)
	}

	doc.Gend()
	doc.End()
}

// drawBar draws vertical bars with a value axis and category labels
func drawBar(w io.Writer, spec Spec) {
	doc := svg.New(w)
	doc.Start(chartWidth, chartHeight)
	doc.Gid(spec.ID)

	const (
		left   = 50.0
		right  = 20.0
		top    = 40.0
		bottom = 50.0
	)
	plotW := chartWidth - left - right
	plotH := chartHeight - top - bottom

	axisMax := spec.Max
	if axisMax <= 0 {
		for _, v := range spec.Values {
			axisMax = math.Max(axisMax, v)
		}
		axisMax = math.Ceil(axisMax)
		if axisMax == 0 {
			axisMax = 1
		}
	}

	if spec.Label != "" {
		doc.Text(chartWidth/2, 24, spec.Label, fontStyle+";text-anchor:middle")
	}

	const ticks = 4
	for i := 0; i <= ticks; i++ {
		v := axisMax * float64(i) / ticks
		y := top + plotH - plotH*float64(i)/ticks
		doc.Line(left, y, left+plotW, y, "stroke:"+gridColor+";stroke-width:1")
		doc.Text(left-8, y+4, value(math.Round(v*10)/10, ""), fontStyle+";font-size:11px;text-anchor:end")
	}

	n := len(spec.Values)
	if n == 0 {
		doc.Gend()
		doc.End()
		return
	}
	slot := plotW / float64(n)
	barW := slot * 0.6
	for i, v := range spec.Values {
		h := plotH * math.Min(v, axisMax) / axisMax
		x := left + slot*float64(i) + (slot-barW)/2
		y := top + plotH - h
		doc.Roundrect(x, y, barW, h, 8, 8, "fill:"+color(spec, i))
		doc.Text(x+barW/2, y-6, value(v, spec.Unit), fontStyle+";font-size:12px;text-anchor:middle")
		if i < len(spec.Labels) {
			doc.Text(x+barW/2, top+plotH+20, spec.Labels[i], fontStyle+";font-size:12px;text-anchor:middle")
		}
	}

	doc.Gend()
	doc.End()
}
