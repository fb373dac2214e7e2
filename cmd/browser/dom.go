//go:build js && wasm && !cloudflare

package main

import (
	"strconv"
	"syscall/js"

	"github.com/joeblew999/deckshow/internal/presenter"
)

// dom renders the presenter, the effects and the charts straight into the
// page. Element ids match web/index.html.
type dom struct {
	doc      js.Value
	animated []js.Value
}

func newDOM() *dom {
	return &dom{doc: js.Global().Get("document")}
}

func (d *dom) byID(id string) js.Value {
	return d.doc.Call("getElementById", id)
}

func (d *dom) slide(n int) js.Value {
	return d.doc.Call("querySelector", `.slide[data-slide="`+strconv.Itoa(n)+`"]`)
}

func truthy(v js.Value) bool {
	return !v.IsNull() && !v.IsUndefined()
}

// build creates one section per slide with its SVG inline
func (d *dom) build(title string, svgs [][]byte) {
	d.byID("deck-title").Set("textContent", title)
	main := d.byID("slides")
	main.Set("innerHTML", "")
	for i, svg := range svgs {
		s := d.doc.Call("createElement", "section")
		s.Set("className", "slide")
		s.Get("dataset").Set("slide", i+1)
		s.Set("innerHTML", string(svg))
		main.Call("appendChild", s)
	}
}

func (d *dom) Deactivate(n int) {
	if s := d.slide(n); truthy(s) {
		s.Get("classList").Call("remove", "active")
	}
}

func (d *dom) Activate(n int) {
	if s := d.slide(n); truthy(s) {
		s.Get("classList").Call("add", "active")
		s.Set("scrollTop", 0)
	}
}

func (d *dom) SetCounter(current, total int) {
	d.byID("counter").Set("textContent", strconv.Itoa(current)+" / "+strconv.Itoa(total))
}

func (d *dom) SetControls(prev, next bool) {
	d.byID("prev").Set("disabled", !prev)
	d.byID("next").Set("disabled", !next)
}

func (d *dom) SetTimer(display string, urgency presenter.Urgency) {
	t := d.byID("timer")
	t.Set("textContent", display)
	t.Get("classList").Call("toggle", "warning", urgency == presenter.UrgencyWarning)
	t.Get("classList").Call("toggle", "critical", urgency == presenter.UrgencyCritical)
}

func (d *dom) TimerExpired() {
	// alert blocks the event loop
	go js.Global().Call("alert", "¡Tiempo terminado!")
}

func (d *dom) SetPresentationMode(on bool) {
	d.doc.Get("body").Get("classList").Call("toggle", "presenting", on)
}

func (d *dom) SetChromeVisible(visible bool) {
	d.byID("chrome").Get("classList").Call("toggle", "hidden", !visible)
}

// SetFullscreen asks the browser; a rejection comes back as a
// fullscreenchange event
func (d *dom) SetFullscreen(on bool) error {
	root := d.doc.Get("documentElement")
	switch {
	case on && truthy(root.Get("requestFullscreen")):
		root.Call("requestFullscreen")
	case !on && truthy(d.doc.Get("fullscreenElement")):
		d.doc.Call("exitFullscreen")
	}
	return nil
}

func (d *dom) SetTheme(name string, vars map[string]string) {
	style := d.doc.Get("documentElement").Get("style")
	for k, v := range vars {
		style.Call("setProperty", k, v)
	}
}

func (d *dom) ShowHelp(text string) {
	h := d.byID("help")
	h.Set("textContent", text)
	h.Get("classList").Call("toggle", "open")
}

func (d *dom) ClearAnimations() {
	for _, el := range d.animated {
		el.Get("classList").Call("remove", "animated")
		el.Get("style").Set("animationName", "")
	}
	d.animated = d.animated[:0]
}

func (d *dom) matches(selector string) js.Value {
	return d.doc.Call("querySelectorAll", ".slide.active "+selector)
}

func (d *dom) Count(selector string) int {
	return d.matches(selector).Length()
}

func (d *dom) Animate(selector string, index int, animation string) {
	m := d.matches(selector)
	if index >= m.Length() {
		return
	}
	el := m.Index(index)
	el.Get("classList").Call("add", "animated")
	el.Get("style").Set("animationName", animation)
	d.animated = append(d.animated, el)
}

func (d *dom) HasMount(id string) bool { return truthy(d.byID(id)) }

func (d *dom) Draw(id string, svg []byte) {
	if m := d.byID(id); truthy(m) {
		m.Set("innerHTML", string(svg))
	}
}

func (d *dom) Clear(id string) {
	if m := d.byID(id); truthy(m) {
		m.Set("innerHTML", "")
	}
}
