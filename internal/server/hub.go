package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/joeblew999/deckshow/internal/input"
	"github.com/joeblew999/deckshow/internal/presenter"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 64
)

var errNoViewer = errors.New("no browser connected")

// Message is a view operation sent to browsers
type Message struct {
	Op        string            `json:"op"`
	Slide     int               `json:"slide,omitempty"`
	Total     int               `json:"total,omitempty"`
	Prev      bool              `json:"prev,omitempty"`
	Next      bool              `json:"next,omitempty"`
	On        bool              `json:"on,omitempty"`
	Display   string            `json:"display,omitempty"`
	Urgency   string            `json:"urgency,omitempty"`
	Theme     string            `json:"theme,omitempty"`
	Vars      map[string]string `json:"vars,omitempty"`
	Text      string            `json:"text,omitempty"`
	Selector  string            `json:"selector,omitempty"`
	Index     int               `json:"index,omitempty"`
	Animation string            `json:"animation,omitempty"`
	Chart     string            `json:"chart,omitempty"`
	SVG       string            `json:"svg,omitempty"`
	Subject   string            `json:"subject,omitempty"`
	Data      json.RawMessage   `json:"data,omitempty"`
	Selectors []string          `json:"selectors,omitempty"`
}

// Event is raw input reported by a browser
type Event struct {
	Type    string  `json:"type"`
	Key     string  `json:"key,omitempty"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
	Control string  `json:"control,omitempty"`
	On      bool    `json:"on,omitempty"`
	// Mounts and Counts describe the browser's document: chart mount ids and,
	// per slide, how many elements match each effect selector
	Mounts []string               `json:"mounts,omitempty"`
	Counts map[int]map[string]int `json:"counts,omitempty"`
}

// Controls is what browser input drives
type Controls interface {
	input.Actions
	FullscreenChanged(on bool)
	ReplayEffects()
}

type client struct {
	conn  *websocket.Conn
	send  chan []byte
	touch *input.Touch
}

// Hub fans view operations out to every connected browser and feeds their
// input back to the presenter. It is the presenter's View, the effects
// Animator, the chart Mounts and the event Publisher of the HTTP host.
type Hub struct {
	log       *slog.Logger
	upgrader  websocket.Upgrader
	selectors []string

	mu       sync.Mutex
	clients  map[*client]struct{}
	mounts   map[string]bool
	counts   map[int]map[string]int
	current  int
	controls Controls
	swipe    float64
	hello    func() any
}

// NewHub creates a hub. selectors are announced to browsers so they can
// report element counts.
func NewHub(selectors []string, log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		log:       log,
		selectors: selectors,
		clients:   make(map[*client]struct{}),
		mounts:    make(map[string]bool),
		counts:    make(map[int]map[string]int),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

// Attach sets the input target. hello builds the snapshot sent to each new
// browser; it runs outside the hub lock.
func (h *Hub) Attach(c Controls, swipeThreshold float64, hello func() any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.controls = c
	h.swipe = swipeThreshold
	h.hello = hello
}

// AllowAnyOrigin disables the websocket same-origin check
func (h *Hub) AllowAnyOrigin() {
	h.upgrader.CheckOrigin = func(r *http.Request) bool { return true }
}

// Clients is the number of connected browsers
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) broadcast(m Message) {
	data, err := json.Marshal(m)
	if err != nil {
		h.log.Error("encoding view message", "op", m.Op, "error", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// browser is not keeping up
			h.removeLocked(c)
		}
	}
}

func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// View

func (h *Hub) Deactivate(n int) { h.broadcast(Message{Op: "deactivate", Slide: n}) }

func (h *Hub) Activate(n int) {
	h.mu.Lock()
	h.current = n
	h.mu.Unlock()
	h.broadcast(Message{Op: "activate", Slide: n})
}

func (h *Hub) SetCounter(current, total int) {
	h.broadcast(Message{Op: "counter", Slide: current, Total: total})
}

func (h *Hub) SetControls(prev, next bool) {
	h.broadcast(Message{Op: "controls", Prev: prev, Next: next})
}

func (h *Hub) SetTimer(display string, urgency presenter.Urgency) {
	h.broadcast(Message{Op: "timer", Display: display, Urgency: urgency.String()})
}

func (h *Hub) TimerExpired() { h.broadcast(Message{Op: "timerExpired"}) }

func (h *Hub) SetPresentationMode(on bool) { h.broadcast(Message{Op: "presentation", On: on}) }

func (h *Hub) SetChromeVisible(visible bool) { h.broadcast(Message{Op: "chrome", On: visible}) }

// SetFullscreen asks browsers to change fullscreen; it fails when none is connected
func (h *Hub) SetFullscreen(on bool) error {
	if h.Clients() == 0 {
		return errNoViewer
	}
	h.broadcast(Message{Op: "fullscreen", On: on})
	return nil
}

func (h *Hub) SetTheme(name string, vars map[string]string) {
	h.broadcast(Message{Op: "theme", Theme: name, Vars: vars})
}

func (h *Hub) ShowHelp(text string) { h.broadcast(Message{Op: "help", Text: text}) }

// Animator

func (h *Hub) ClearAnimations() { h.broadcast(Message{Op: "clearAnimations"}) }

// Count returns the element count the browsers reported for the visible slide
func (h *Hub) Count(selector string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.counts[h.current][selector]
}

func (h *Hub) Animate(selector string, index int, animation string) {
	h.broadcast(Message{Op: "animate", Selector: selector, Index: index, Animation: animation})
}

// Chart mounts

func (h *Hub) HasMount(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.mounts[id]
}

func (h *Hub) Draw(id string, svg []byte) {
	h.broadcast(Message{Op: "chart", Chart: id, SVG: string(svg)})
}

func (h *Hub) Clear(id string) { h.broadcast(Message{Op: "chartClear", Chart: id}) }

// Mounts lists the chart mounts browsers reported
func (h *Hub) Mounts() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	ids := make([]string, 0, len(h.mounts))
	for id := range h.mounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Publish implements runtime.Publisher
func (h *Hub) Publish(ctx context.Context, subject string, data []byte) error {
	m := Message{Op: "event", Subject: subject}
	if json.Valid(data) {
		m.Data = data
	} else if len(data) > 0 {
		m.Text = string(data)
	}
	h.broadcast(m)
	return nil
}

// ServeHTTP upgrades to a websocket and serves one browser
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade", "error", err)
		return
	}

	h.mu.Lock()
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	controls, swipe, hello := h.controls, h.swipe, h.hello
	if controls != nil {
		c.touch = input.NewTouch(controls, swipe)
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.log.Debug("browser connected", "remote", r.RemoteAddr)
	go h.writePump(c)

	h.sendTo(c, Message{Op: "selectors", Selectors: h.selectors})
	if hello != nil {
		if data, err := json.Marshal(hello()); err == nil {
			h.sendTo(c, Message{Op: "hello", Data: data})
		}
	}
	h.readLoop(c, controls)
}

func (h *Hub) sendTo(c *client, m Message) {
	data, err := json.Marshal(m)
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
		h.removeLocked(c)
	}
}

func (h *Hub) readLoop(c *client, controls Controls) {
	defer func() {
		h.mu.Lock()
		h.removeLocked(c)
		h.mu.Unlock()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(1 << 20)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	var keys *input.Keyboard
	var ptr *input.Pointer
	if controls != nil {
		keys = input.NewKeyboard(controls)
		ptr = input.NewPointer(controls)
	}

	for {
		var ev Event
		if err := c.conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn("websocket read", "error", err)
			}
			return
		}
		if ev.Type == "dom" {
			if h.register(ev) && controls != nil {
				controls.ReplayEffects()
			}
			continue
		}
		if controls == nil {
			continue
		}
		switch ev.Type {
		case "key":
			keys.HandleKey(ev.Key)
		case "touchstart":
			c.touch.Start(ev.X, ev.Y)
		case "touchend":
			c.touch.End(ev.X, ev.Y)
		case "pointermove":
			ptr.Move()
		case "dblclick":
			ptr.DoubleClick()
		case "click":
			ptr.Click(ev.Control)
		case "fullscreenchange":
			controls.FullscreenChanged(ev.On)
		default:
			h.log.Debug("ignoring browser event", "type", ev.Type)
		}
	}
}

// register records the document a browser reported. It reports whether
// the counts of the visible slide were unknown until now.
func (h *Hub) register(ev Event) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, id := range ev.Mounts {
		h.mounts[id] = true
	}
	_, known := h.counts[h.current]
	for slide, counts := range ev.Counts {
		h.counts[slide] = counts
	}
	_, now := h.counts[h.current]
	return !known && now
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
