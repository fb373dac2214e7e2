// Package session wires one running presentation: the presenter with its
// effects, charts, persistence, statistics and export. Every outer surface
// (HTTP, MCP, terminal, browser) drives a Session.
package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/joeblew999/deckshow/internal/charts"
	"github.com/joeblew999/deckshow/internal/effects"
	"github.com/joeblew999/deckshow/internal/export"
	"github.com/joeblew999/deckshow/internal/presenter"
	"github.com/joeblew999/deckshow/internal/stats"
	"github.com/joeblew999/deckshow/internal/store"
	"github.com/joeblew999/deckshow/pkg/pipeline"
	"github.com/joeblew999/deckshow/runtime"
)

// Deck is the loaded slide collection
type Deck interface {
	Len() int
	Title() string
	XML() []byte
	SVG(n int) ([]byte, bool)
	Titles() []string
}

// Options configures a session. Zero values fall back to defaults.
type Options struct {
	KV        runtime.KVStore
	Prefix    string
	Pipeline  pipeline.Pipeline
	View      presenter.View
	Animator  effects.Animator
	Mounts    charts.Mounts
	Scheduler presenter.Scheduler
	Clock     func() time.Time

	TimerMinutes int
	IdleHide     time.Duration
	Sections     map[string]int
	Theme        string

	Log *slog.Logger
}

// Session is one running presentation
type Session struct {
	Deck      Deck
	Presenter *presenter.Presenter
	Effects   *effects.Dispatcher
	Charts    *charts.Adapter
	Store     *store.Store
	Stats     *stats.Tracker
	Rehearsal *stats.Rehearsal
	Export    *export.Exporter

	log *slog.Logger
}

// New assembles a session over deck. Nothing is shown until Start.
func New(ctx context.Context, deck Deck, opts Options) *Session {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	kv := opts.KV
	if kv == nil {
		kv = runtime.NewMemoryKV()
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = store.DefaultPrefix
	}
	sched := opts.Scheduler
	if sched == nil {
		sched = presenter.RealScheduler{}
	}
	view := opts.View
	if view == nil {
		view = presenter.NopView{}
	}

	s := &Session{Deck: deck, log: log}
	s.Charts = charts.NewAdapter(charts.DefaultSpecs(), opts.Mounts, log.With("component", "charts"))
	s.Effects = effects.NewDispatcher(effects.DefaultTable(), opts.Animator, s.Charts, sched, log.With("component", "effects"))
	s.Store = store.New(ctx, kv, prefix, log.With("component", "store"))
	s.Stats = stats.NewTracker(opts.Clock)
	s.Rehearsal = stats.NewRehearsal(s.Stats)
	s.Export = export.New(deck, opts.Pipeline, log.With("component", "export"))

	popts := []presenter.Option{
		presenter.WithView(view),
		presenter.WithScheduler(sched),
		presenter.WithEffects(s.Effects),
		presenter.WithStore(s.Store),
		presenter.WithNavigateHook(s.Stats.OnNavigate),
		presenter.WithTimerMinutes(opts.TimerMinutes),
		presenter.WithIdleHide(opts.IdleHide),
		presenter.WithLogger(log.With("component", "presenter")),
	}
	if len(opts.Sections) > 0 {
		popts = append(popts, presenter.WithSections(opts.Sections))
	}
	s.Presenter = presenter.New(deck, popts...)
	if opts.Theme != "" && opts.Theme != "default" {
		if !s.Presenter.SetTheme(opts.Theme) {
			log.Warn("unknown theme, keeping default", "theme", opts.Theme)
		}
	}
	return s
}

// Start shows the first slide, honoring a slide query parameter
func (s *Session) Start(rawQuery string) {
	s.Presenter.Restore(rawQuery)
	s.log.Info("presentation started", "title", s.Deck.Title(), "slides", s.Deck.Len(), "slide", s.Presenter.Current())
}

// Close stops timers
func (s *Session) Close() {
	s.Presenter.Close()
}

// Note is the speaker note of one slide
type Note struct {
	Slide int    `json:"slide"`
	Text  string `json:"text"`
	HTML  string `json:"html"`
}

// Note returns the note of slide n with its rendered HTML
func (s *Session) Note(n int) (Note, error) {
	html, err := s.Store.NoteHTML(n)
	if err != nil {
		return Note{}, err
	}
	return Note{Slide: n, Text: s.Store.Note(n), HTML: html}, nil
}

// Overview describes the deck and the presenter state
type Overview struct {
	Title    string          `json:"title"`
	Titles   []string        `json:"titles"`
	Sections map[string]int  `json:"sections"`
	Themes   []string        `json:"themes"`
	State    presenter.State `json:"state"`
}

// Overview returns a snapshot for clients that just connected
func (s *Session) Overview() Overview {
	return Overview{
		Title:    s.Deck.Title(),
		Titles:   s.Deck.Titles(),
		Sections: s.Presenter.Sections(),
		Themes:   s.Presenter.Themes(),
		State:    s.Presenter.State(),
	}
}
