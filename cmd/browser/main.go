//go:build js && wasm && !cloudflare

// Browser entry point. The whole presenter runs in WebAssembly: slides are
// rendered in-process, state lives in localStorage and the page is driven
// directly through the DOM.
//
//	deckshow.start(source)   render and present a deck, honoring ?slide=N
//	deckshow.process(source) render a deck and return it as JSON
//	deckshow.version()
package main

import (
	"context"
	"encoding/json"
	"syscall/js"

	"github.com/joeblew999/deckshow/internal/input"
	"github.com/joeblew999/deckshow/internal/render"
	"github.com/joeblew999/deckshow/internal/session"
	"github.com/joeblew999/deckshow/internal/slides"
	"github.com/joeblew999/deckshow/pkg/pipeline"
	"github.com/joeblew999/deckshow/runtime"
)

const swipeThreshold = 50

var current *session.Session

func main() {
	runtime.SetRuntime(&runtime.Runtime{
		KV:       runtime.NewLocalStorageKV(),
		Pipeline: pipeline.NewInProcessPipeline(render.DefaultOptions()),
	})

	js.Global().Set("deckshow", js.ValueOf(map[string]any{
		"version": js.FuncOf(version),
		"process": js.FuncOf(process),
		"start":   js.FuncOf(start),
	}))

	select {}
}

func version(this js.Value, args []js.Value) any {
	return "deckshow-wasm v0.2.0 (browser)"
}

func renderDeck(source string) (*slides.Registry, error) {
	res, err := runtime.Current.Pipeline.Process(context.Background(), []byte(source), pipeline.FormatSVG)
	if err != nil {
		return nil, err
	}
	return slides.New(res)
}

func process(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorResult("missing source argument")
	}
	reg, err := renderDeck(args[0].String())
	if err != nil {
		return errorResult(err.Error())
	}
	svgs := make([]string, reg.Len())
	for n := 1; n <= reg.Len(); n++ {
		svg, _ := reg.SVG(n)
		svgs[n-1] = string(svg)
	}
	return successResult(map[string]any{
		"title":      reg.Title(),
		"slideCount": reg.Len(),
		"titles":     reg.Titles(),
		"slides":     svgs,
	})
}

func start(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorResult("missing source argument")
	}
	reg, err := renderDeck(args[0].String())
	if err != nil {
		return errorResult(err.Error())
	}
	if current != nil {
		current.Close()
	}

	d := newDOM()
	svgs := make([][]byte, reg.Len())
	for n := 1; n <= reg.Len(); n++ {
		svgs[n-1], _ = reg.SVG(n)
	}
	d.build(reg.Title(), svgs)

	current = session.New(context.Background(), reg, session.Options{
		KV:       runtime.KV(),
		Pipeline: runtime.Current.Pipeline,
		View:     d,
		Animator: d,
		Mounts:   d,
	})
	bindInput(d, current)

	query := js.Global().Get("location").Get("search").String()
	if len(query) > 0 && query[0] == '?' {
		query = query[1:]
	}
	current.Start(query)
	return successResult(map[string]any{"title": reg.Title(), "slideCount": reg.Len()})
}

var listeners []js.Func

func listen(target js.Value, event string, fn func(e js.Value)) {
	f := js.FuncOf(func(this js.Value, args []js.Value) any {
		fn(args[0])
		return nil
	})
	target.Call("addEventListener", event, f)
	listeners = append(listeners, f)
}

// bindInput feeds DOM events through the input adapters. Handlers hand off
// to a goroutine so the presenter never runs on the event loop.
func bindInput(d *dom, sess *session.Session) {
	doc := d.doc
	for _, f := range listeners {
		f.Release()
	}
	listeners = nil

	p := sess.Presenter
	keys := input.NewKeyboard(p)
	touch := input.NewTouch(p, swipeThreshold)
	ptr := input.NewPointer(p)
	first := func(e js.Value) (float64, float64) {
		t := e.Get("changedTouches").Index(0)
		return t.Get("screenX").Float(), t.Get("screenY").Float()
	}

	listen(doc, "keydown", func(e js.Value) {
		key := e.Get("key").String()
		go keys.HandleKey(key)
	})
	listen(doc, "touchstart", func(e js.Value) {
		x, y := first(e)
		go touch.Start(x, y)
	})
	listen(doc, "touchend", func(e js.Value) {
		x, y := first(e)
		go touch.End(x, y)
	})
	listen(doc, "mousemove", func(js.Value) { go ptr.Move() })
	listen(doc, "dblclick", func(js.Value) { go ptr.DoubleClick() })
	listen(doc, "click", func(e js.Value) {
		c := e.Get("target").Call("closest", "[data-control]")
		if truthy(c) {
			control := c.Get("dataset").Get("control").String()
			go ptr.Click(control)
		}
	})
	listen(doc, "fullscreenchange", func(js.Value) {
		on := truthy(doc.Get("fullscreenElement"))
		go p.FullscreenChanged(on)
	})
}

func successResult(data map[string]any) string {
	data["success"] = true
	b, _ := json.Marshal(data)
	return string(b)
}

func errorResult(msg string) string {
	b, _ := json.Marshal(map[string]any{
		"success": false,
		"error":   msg,
	})
	return string(b)
}
