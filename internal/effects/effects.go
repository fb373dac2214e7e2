// Package effects maps slide numbers to the cosmetic actions that run when a
// slide is shown: staggered element reveals and chart refreshes.
package effects

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Action is one entry of a slide's effect list: Reveal or RefreshChart
type Action interface {
	action()
}

// Reveal adds an animation to elements matching Selector. Without All only
// the first match is animated. Element i starts at Delay + i*Stagger.
type Reveal struct {
	Selector  string
	Animation string
	Delay     time.Duration
	Stagger   time.Duration
	All       bool
}

// RefreshChart rebuilds the chart with the given id
type RefreshChart struct {
	ID string
}

func (Reveal) action()       {}
func (RefreshChart) action() {}

// Table maps 1-based slide numbers to their actions, in order
type Table map[int][]Action

// DefaultTable is the effect list of the reference deck
func DefaultTable() Table {
	ms := time.Millisecond
	return Table{
		1: {
			Reveal{Selector: ".main-title", Animation: "fadeInDown"},
			Reveal{Selector: ".subtitle", Animation: "fadeInUp"},
			Reveal{Selector: ".author-info", Animation: "fadeIn", Delay: 500 * ms},
		},
		3: {
			Reveal{Selector: ".barrier-section", Animation: "fadeInLeft"},
			Reveal{Selector: ".opportunity-section", Animation: "fadeInRight", Delay: 300 * ms},
			RefreshChart{ID: "accessChart"},
		},
		6: {
			Reveal{Selector: ".competencia-item:not(.inactive)", Animation: "pulse", Stagger: 100 * ms, All: true},
		},
		7: {
			Reveal{Selector: ".era-item", Animation: "fadeInUp", Stagger: 150 * ms, All: true},
		},
		8: {
			Reveal{Selector: ".adaptacion-steam-card", Animation: "fadeIn", Stagger: 100 * ms, All: true},
		},
		9: {
			Reveal{Selector: ".metodologia-phase", Animation: "fadeInUp", Stagger: 200 * ms, All: true},
		},
		11: {
			RefreshChart{ID: "steamChart"},
			RefreshChart{ID: "steamChart2"},
			Reveal{Selector: ".metric-card", Animation: "bounceIn", Stagger: 200 * ms, All: true},
		},
		12: {
			Reveal{Selector: ".finding", Animation: "fadeInUp", Stagger: 150 * ms, All: true},
		},
		13: {
			Reveal{Selector: ".quote-card", Animation: "fadeIn", Stagger: 300 * ms, All: true},
		},
		15: {
			Reveal{Selector: ".sustainability-card", Animation: "fadeInLeft", Stagger: 300 * ms, All: true},
		},
	}
}

// Animator applies animations to slide elements
type Animator interface {
	// ClearAnimations removes every animation applied so far
	ClearAnimations()
	// Count returns how many elements match selector on the visible slide
	Count(selector string) int
	// Animate starts animation on the index-th match of selector
	Animate(selector string, index int, animation string)
}

// ChartRefresher rebuilds charts by id
type ChartRefresher interface {
	Refresh(id string)
}

// Scheduler runs a callback later and returns its cancel func
type Scheduler interface {
	After(d time.Duration, fn func()) (cancel func())
}

// Dispatcher runs the actions of a slide
type Dispatcher struct {
	table    Table
	animator Animator
	charts   ChartRefresher
	sched    Scheduler
	log      *slog.Logger

	mu      sync.Mutex
	gen     int
	pending []func()
}

// NewDispatcher creates a dispatcher. animator or charts may be nil, in
// which case those actions are skipped.
func NewDispatcher(table Table, animator Animator, charts ChartRefresher, sched Scheduler, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{table: table, animator: animator, charts: charts, sched: sched, log: log}
}

// Dispatch clears earlier animations, cancels reveals that have not run
// yet and starts the actions of slide n.
func (d *Dispatcher) Dispatch(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, cancel := range d.pending {
		cancel()
	}
	d.pending = nil
	d.gen++
	if d.animator != nil {
		d.animator.ClearAnimations()
	}

	for _, a := range d.table[n] {
		switch a := a.(type) {
		case Reveal:
			d.reveal(a)
		case RefreshChart:
			if d.charts == nil {
				d.log.Debug("no chart renderer, skipping refresh", "chart", a.ID)
				continue
			}
			d.charts.Refresh(a.ID)
		}
	}
}

func (d *Dispatcher) reveal(r Reveal) {
	if d.animator == nil {
		return
	}
	count := d.animator.Count(r.Selector)
	if count > 1 && !r.All {
		count = 1
	}
	for i := 0; i < count; i++ {
		delay := r.Delay + time.Duration(i)*r.Stagger
		if delay <= 0 || d.sched == nil {
			d.animator.Animate(r.Selector, i, r.Animation)
			continue
		}
		gen, index := d.gen, i
		d.pending = append(d.pending, d.sched.After(delay, func() {
			d.mu.Lock()
			defer d.mu.Unlock()
			if gen != d.gen {
				return
			}
			d.animator.Animate(r.Selector, index, r.Animation)
		}))
	}
}

// Slides lists the slide numbers that have actions
func (t Table) Slides() []int {
	out := make([]int, 0, len(t))
	for n := range t {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Selectors lists the distinct reveal selectors of the table
func (t Table) Selectors() []string {
	seen := make(map[string]bool)
	var out []string
	for _, actions := range t {
		for _, a := range actions {
			if r, ok := a.(Reveal); ok && !seen[r.Selector] {
				seen[r.Selector] = true
				out = append(out, r.Selector)
			}
		}
	}
	sort.Strings(out)
	return out
}
