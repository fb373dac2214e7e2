// Package tui presents a deck in the terminal. View renders the presenter
// state with tcell and Loop feeds terminal input back through the same
// keyboard and pointer adapters the browser uses.
package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/joeblew999/deckshow/internal/input"
	"github.com/joeblew999/deckshow/internal/presenter"
)

// Deck is what the terminal shows of each slide
type Deck interface {
	Title() string
	Titles() []string
}

type hit struct {
	x0, x1  int
	control string
}

// View draws the presenter state on a tcell screen
type View struct {
	screen tcell.Screen
	deck   Deck
	notes  func(n int) string

	mu         sync.Mutex
	current    int
	total      int
	prev, next bool
	timer      string
	urgency    presenter.Urgency
	expired    bool
	presenting bool
	chrome     bool
	theme      map[string]string
	help       string
	hits       []hit
}

// NewView creates a view. notes, when not nil, returns the speaker note of a slide.
func NewView(screen tcell.Screen, deck Deck, notes func(n int) string) *View {
	return &View{
		screen: screen,
		deck:   deck,
		notes:  notes,
		chrome: true,
		theme:  presenter.DefaultThemes()["default"],
	}
}

func (v *View) update(fn func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fn()
	v.draw()
}

func (v *View) Deactivate(n int) {}

func (v *View) Activate(n int) {
	v.update(func() {
		v.current = n
		v.expired = false
	})
}

func (v *View) SetCounter(current, total int) {
	v.update(func() { v.current, v.total = current, total })
}

func (v *View) SetControls(prev, next bool) {
	v.update(func() { v.prev, v.next = prev, next })
}

func (v *View) SetTimer(display string, urgency presenter.Urgency) {
	v.update(func() { v.timer, v.urgency = display, urgency })
}

func (v *View) TimerExpired() {
	v.update(func() { v.expired = true })
}

func (v *View) SetPresentationMode(on bool) {
	v.update(func() { v.presenting = on })
}

func (v *View) SetChromeVisible(visible bool) {
	v.update(func() { v.chrome = visible })
}

// SetFullscreen always succeeds; the terminal is already the whole screen
func (v *View) SetFullscreen(bool) error { return nil }

func (v *View) SetTheme(name string, vars map[string]string) {
	v.update(func() { v.theme = vars })
}

// ShowHelp toggles the help overlay
func (v *View) ShowHelp(text string) {
	v.update(func() {
		if v.help != "" {
			v.help = ""
			return
		}
		v.help = text
	})
}

// dismiss closes the help overlay and reports whether it was open
func (v *View) dismiss() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.help == "" {
		return false
	}
	v.help = ""
	v.draw()
	return true
}

// Redraw repaints the whole screen, such as after a resize
func (v *View) Redraw() {
	v.update(func() { v.screen.Sync() })
}

func (v *View) color(name string) tcell.Color {
	if c, ok := v.theme[name]; ok {
		return tcell.GetColor(c)
	}
	return tcell.ColorDefault
}

func (v *View) draw() {
	s := v.screen
	s.Clear()
	w, h := s.Size()
	base := tcell.StyleDefault.Foreground(v.color("--text-color"))
	accent := base.Foreground(v.color("--primary-color")).Bold(true)

	if !v.presenting {
		drawText(s, 1, 0, w-2, accent, v.deck.Title())
	}

	titles := v.deck.Titles()
	if v.current >= 1 && v.current <= len(titles) {
		title := titles[v.current-1]
		y := h / 3
		drawText(s, (w-len([]rune(title)))/2, y, w, accent, title)
		if v.notes != nil {
			for i, line := range strings.Split(strings.TrimSpace(v.notes(v.current)), "\n") {
				if y+2+i >= h-2 {
					break
				}
				drawText(s, 4, y+2+i, w-8, base.Foreground(v.color("--accent-color")), line)
			}
		}
	}

	v.hits = v.hits[:0]
	if v.chrome {
		v.drawChrome(w, h, base)
	}
	if v.help != "" {
		v.drawHelp(w, h, base)
	}
	s.Show()
}

func (v *View) drawChrome(w, h int, base tcell.Style) {
	s := v.screen
	y := h - 1
	bar := base.Background(tcell.ColorDarkSlateGray)
	for x := 0; x < w; x++ {
		s.SetContent(x, y, ' ', nil, bar)
	}

	x := 1
	control := func(label, name string, enabled bool) {
		st := bar.Bold(true)
		if !enabled {
			st = bar.Dim(true)
		}
		drawText(s, x, y, w-x, st, label)
		v.hits = append(v.hits, hit{x0: x, x1: x + len([]rune(label)), control: name})
		x += len([]rune(label)) + 1
	}
	control("<", input.ControlPrev, v.prev)
	counter := fmt.Sprintf("%d / %d", v.current, v.total)
	drawText(s, x, y, w-x, bar, counter)
	x += len(counter) + 1
	control(">", input.ControlNext, v.next)

	timer := bar
	switch {
	case v.expired:
		timer = bar.Background(tcell.ColorRed).Bold(true)
	case v.urgency == presenter.UrgencyCritical:
		timer = bar.Background(tcell.ColorRed)
	case v.urgency == presenter.UrgencyWarning:
		timer = bar.Background(tcell.ColorYellow).Foreground(tcell.ColorBlack)
	}
	display := " " + v.timer + " "
	if v.expired {
		display = " Time is up! "
	}
	drawText(s, w-len(display)-1, y, len(display), timer, display)
}

func (v *View) drawHelp(w, h int, base tcell.Style) {
	lines := strings.Split(v.help, "\n")
	width := 0
	for _, l := range lines {
		width = max(width, len([]rune(l)))
	}
	box := base.Background(tcell.ColorDarkBlue)
	x0, y0 := max(0, (w-width-4)/2), max(0, (h-len(lines)-2)/2)
	for y := y0; y < y0+len(lines)+2 && y < h; y++ {
		for x := x0; x < x0+width+4 && x < w; x++ {
			v.screen.SetContent(x, y, ' ', nil, box)
		}
	}
	for i, l := range lines {
		drawText(v.screen, x0+2, y0+1+i, width, box, l)
	}
}

func drawText(s tcell.Screen, x, y, maxWidth int, style tcell.Style, text string) {
	if x < 0 {
		x = 0
	}
	for i, r := range []rune(text) {
		if i >= maxWidth {
			return
		}
		s.SetContent(x+i, y, r, nil, style)
	}
}

// control returns the chrome control under the pointer, if any
func (v *View) control(x, y int) string {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, h := v.screen.Size()
	if y != h-1 {
		return ""
	}
	for _, c := range v.hits {
		if x >= c.x0 && x < c.x1 {
			return c.control
		}
	}
	return ""
}

// keyName maps a terminal key to the DOM key name the keyboard adapter expects
func keyName(ev *tcell.EventKey) string {
	switch ev.Key() {
	case tcell.KeyRight:
		return "ArrowRight"
	case tcell.KeyLeft:
		return "ArrowLeft"
	case tcell.KeyHome:
		return "Home"
	case tcell.KeyEnd:
		return "End"
	case tcell.KeyPgDn:
		return "ArrowRight"
	case tcell.KeyPgUp:
		return "ArrowLeft"
	case tcell.KeyRune:
		return string(ev.Rune())
	}
	return ""
}

func quit(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q'
	}
	return false
}

// Loop reads terminal events until q, Escape or Ctrl-C, or until ctx ends.
// Keys go through the keyboard adapter; mouse movement and clicks go through
// the pointer adapter.
func Loop(ctx context.Context, screen tcell.Screen, view *View, actions input.Actions) error {
	keys := input.NewKeyboard(actions)
	ptr := input.NewPointer(actions)

	stop := context.AfterFunc(ctx, func() {
		screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
	defer stop()

	var buttons tcell.ButtonMask
	for {
		switch ev := screen.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventInterrupt:
			return ctx.Err()
		case *tcell.EventResize:
			view.Redraw()
		case *tcell.EventKey:
			if quit(ev) {
				return nil
			}
			if view.dismiss() && ev.Rune() == '?' {
				continue
			}
			keys.HandleKey(keyName(ev))
		case *tcell.EventMouse:
			pressed := ev.Buttons()
			if buttons&tcell.Button1 != 0 && pressed&tcell.Button1 == 0 {
				x, y := ev.Position()
				ptr.Click(view.control(x, y))
			}
			buttons = pressed
			ptr.Move()
		}
	}
}
