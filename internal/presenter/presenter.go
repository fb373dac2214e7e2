// Package presenter owns the state of one running presentation: the current
// slide, the countdown, presentation mode, fullscreen and theme.
//
// Every action, scheduler callback and hook runs under a single lock, which
// gives the one-at-a-time semantics of a browser event loop.
package presenter

import (
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// DefaultIdleHide is how long the pointer must rest before chrome hides
const DefaultIdleHide = 3 * time.Second

// Slides is the part of the slide registry the presenter needs
type Slides interface {
	Len() int
}

// Effects runs the per-slide cosmetic actions after activation
type Effects interface {
	Dispatch(slide int)
}

// SlideStore persists the current slide number
type SlideStore interface {
	SaveCurrent(n int)
	LoadCurrent() (int, bool)
}

// NavigateHook observes activations. from is 0 for the first activation.
// Hooks run under the presenter lock and must not call back into it.
type NavigateHook func(from, to int)

// State is a snapshot of the presenter
type State struct {
	Current      int        `json:"current"`
	Total        int        `json:"total"`
	Presenting   bool       `json:"presenting"`
	Fullscreen   bool       `json:"fullscreen"`
	ChromeHidden bool       `json:"chromeHidden"`
	Theme        string     `json:"theme"`
	Timer        TimerState `json:"timer"`
}

// Presenter is the presentation state machine
type Presenter struct {
	mu    sync.Mutex
	total int

	view     View
	sched    Scheduler
	effects  Effects
	store    SlideStore
	hooks    []NavigateHook
	sections map[string]int
	themes   map[string]Theme
	idleHide time.Duration
	log      *slog.Logger

	current    int // 0-based, -1 before the first activation
	timer      timer
	presenting bool
	fullscreen bool
	chromeOff  bool
	theme      string
	idleGen    int
	idleCancel func()
}

// Option configures a Presenter
type Option func(*Presenter)

// WithView sets the view receiving visual updates
func WithView(v View) Option {
	return func(p *Presenter) { p.view = v }
}

// WithScheduler replaces the wall-clock scheduler
func WithScheduler(s Scheduler) Option {
	return func(p *Presenter) { p.sched = s }
}

// WithEffects sets the per-slide effects dispatcher
func WithEffects(e Effects) Option {
	return func(p *Presenter) { p.effects = e }
}

// WithStore persists and restores the current slide
func WithStore(s SlideStore) Option {
	return func(p *Presenter) { p.store = s }
}

// WithNavigateHook adds an activation observer
func WithNavigateHook(h NavigateHook) Option {
	return func(p *Presenter) { p.hooks = append(p.hooks, h) }
}

// WithSections replaces the section jump table
func WithSections(sections map[string]int) Option {
	return func(p *Presenter) {
		p.sections = make(map[string]int, len(sections))
		for name, n := range sections {
			p.sections[normalize(name)] = n
		}
	}
}

// WithThemes replaces the theme table
func WithThemes(themes map[string]Theme) Option {
	return func(p *Presenter) { p.themes = themes }
}

// WithTimerMinutes sets the countdown duration; values below one are ignored
func WithTimerMinutes(minutes int) Option {
	return func(p *Presenter) {
		if minutes >= 1 {
			p.timer = newTimer(minutes)
		}
	}
}

// WithIdleHide sets the pointer idle period before chrome hides
func WithIdleHide(d time.Duration) Option {
	return func(p *Presenter) {
		if d > 0 {
			p.idleHide = d
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(p *Presenter) { p.log = l }
}

// New creates a presenter over slides. Nothing is shown until Restore or GoTo.
func New(slides Slides, opts ...Option) *Presenter {
	p := &Presenter{
		total:    slides.Len(),
		view:     NopView{},
		sched:    RealScheduler{},
		sections: DefaultSections(),
		themes:   DefaultThemes(),
		idleHide: DefaultIdleHide,
		log:      slog.Default(),
		current:  -1,
		timer:    newTimer(DefaultTimerMinutes),
		theme:    "default",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Restore shows the first slide of the session. The slide query parameter
// wins when it is a number in range, then the stored slide, then slide 1.
func (p *Presenter) Restore(rawQuery string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 1
	if p.store != nil {
		if saved, ok := p.store.LoadCurrent(); ok && p.inRange(saved) {
			n = saved
		}
	}
	if q, err := url.ParseQuery(strings.TrimPrefix(rawQuery, "?")); err == nil {
		if v, err := strconv.Atoi(q.Get("slide")); err == nil && p.inRange(v) {
			n = v
		}
	}
	p.view.SetTimer(p.timer.display(), p.timer.urgency)
	p.activate(n - 1)
}

// GoTo shows slide n (1-based). Numbers outside 1..Total are ignored.
func (p *Presenter) GoTo(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.inRange(n) {
		return
	}
	p.activate(n - 1)
}

// Next shows the following slide, wrapping from the last to the first
func (p *Presenter) Next() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.step(1)
}

// Previous shows the preceding slide, wrapping from the first to the last
func (p *Presenter) Previous() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.step(-1)
}

// First shows slide 1
func (p *Presenter) First() {
	p.GoTo(1)
}

// Last shows the final slide
func (p *Presenter) Last() {
	p.GoTo(p.total)
}

// Current returns the 1-based number of the visible slide, 0 before Restore
func (p *Presenter) Current() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current + 1
}

// Total is the number of slides
func (p *Presenter) Total() int {
	return p.total
}

// State returns a snapshot of the presenter
func (p *Presenter) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return State{
		Current:      p.current + 1,
		Total:        p.total,
		Presenting:   p.presenting,
		Fullscreen:   p.fullscreen,
		ChromeHidden: p.chromeOff,
		Theme:        p.theme,
		Timer:        p.timer.state(),
	}
}

func (p *Presenter) inRange(n int) bool {
	return n >= 1 && n <= p.total
}

func (p *Presenter) step(delta int) {
	if p.total == 0 {
		return
	}
	cur := p.current
	if cur < 0 {
		cur = 0
	}
	p.activate(((cur+delta)%p.total + p.total) % p.total)
}

// activate runs the activation sequence for 0-based index i
func (p *Presenter) activate(i int) {
	from := p.current + 1
	to := i + 1

	if p.current >= 0 {
		p.view.Deactivate(from)
	}
	p.current = i
	p.view.Activate(to)
	p.view.SetCounter(to, p.total)
	p.view.SetControls(to > 1, to < p.total)
	if p.effects != nil {
		p.effects.Dispatch(to)
	}
	if p.store != nil {
		p.store.SaveCurrent(to)
	}
	for _, h := range p.hooks {
		h(from, to)
	}
	p.log.Debug("slide activated", "from", from, "to", to)
}

// ToggleFullscreen asks the view to switch fullscreen. A rejection is
// logged and leaves the state unchanged.
func (p *Presenter) ToggleFullscreen() {
	p.mu.Lock()
	defer p.mu.Unlock()
	want := !p.fullscreen
	if err := p.view.SetFullscreen(want); err != nil {
		p.log.Warn("fullscreen request rejected", "enter", want, "error", err)
		return
	}
	p.fullscreen = want
}

// ReplayEffects runs the effects of the visible slide again. Hosts call it
// once a view can report the elements the effects target.
func (p *Presenter) ReplayEffects() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current < 0 || p.effects == nil {
		return
	}
	p.effects.Dispatch(p.current + 1)
}

// FullscreenChanged records a fullscreen change made outside the presenter,
// such as the user pressing Escape in the browser.
func (p *Presenter) FullscreenChanged(on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fullscreen = on
}

// TogglePresentationMode flips presentation mode. Leaving it shows the chrome.
func (p *Presenter) TogglePresentationMode() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.presenting = !p.presenting
	p.view.SetPresentationMode(p.presenting)
	if !p.presenting {
		p.cancelIdle()
		p.setChrome(true)
	}
}

// Presenting reports whether presentation mode is on
func (p *Presenter) Presenting() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.presenting
}

// PointerMoved shows the chrome and restarts the idle countdown. When it
// runs out the chrome hides, but only if presentation mode is on by then.
func (p *Presenter) PointerMoved() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setChrome(true)
	p.cancelIdle()
	gen := p.idleGen
	p.idleCancel = p.sched.After(p.idleHide, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if gen != p.idleGen {
			return
		}
		p.idleCancel = nil
		if p.presenting {
			p.setChrome(false)
		}
	})
}

func (p *Presenter) cancelIdle() {
	if p.idleCancel != nil {
		p.idleCancel()
		p.idleCancel = nil
	}
	p.idleGen++
}

func (p *Presenter) setChrome(visible bool) {
	p.chromeOff = !visible
	p.view.SetChromeVisible(visible)
}

// Help shows the keyboard shortcuts
func (p *Presenter) Help() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.view.ShowHelp(HelpText)
}

// HelpText lists the keyboard shortcuts
const HelpText = `Keyboard shortcuts:
  Right / Space   next slide
  Left            previous slide
  Home / End      first / last slide
  1-9             go to slide
  F               toggle fullscreen
  T               start / stop timer
  R               reset timer
  P               toggle presentation mode
  ?               this help`

// Close cancels the countdown and the idle timer
func (p *Presenter) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelTick()
	p.timer.running = false
	p.cancelIdle()
}
