// Package stats tracks how a presentation session is used: slide visits,
// time spent per slide and rehearsal attempts. Nothing is persisted.
package stats

import (
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Stats is a snapshot of one session
type Stats struct {
	SessionID string `json:"sessionId"`
	// TotalMinutes is the time spent on slides that were left, rounded
	TotalMinutes int `json:"totalTime"`
	// MostVisited is 0 until a slide has been visited
	MostVisited int             `json:"mostVisitedSlide"`
	Visits      map[int]int     `json:"slideVisits"`
	Seconds     map[int]float64 `json:"slideSeconds"`
}

// Tracker counts slide visits and dwell time. OnNavigate is meant to be
// registered as a presenter navigation hook.
type Tracker struct {
	now func() time.Time

	mu      sync.Mutex
	session string
	visits  map[int]int
	dwell   map[int]time.Duration
	total   time.Duration
	current int
	entered time.Time
}

// NewTracker creates a tracker with a fresh session id. A nil clock uses time.Now.
func NewTracker(clock func() time.Time) *Tracker {
	if clock == nil {
		clock = time.Now
	}
	t := &Tracker{now: clock, session: uuid.NewString()}
	t.reset()
	return t
}

func (t *Tracker) reset() {
	t.visits = make(map[int]int)
	t.dwell = make(map[int]time.Duration)
	t.total = 0
	t.entered = t.now()
}

// OnNavigate records leaving from and entering to. from is 0 on the first
// slide of a session; re-showing the same slide is not a visit.
func (t *Tracker) OnNavigate(from, to int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if from == to {
		return
	}
	now := t.now()
	if t.current > 0 {
		spent := now.Sub(t.entered)
		t.dwell[t.current] += spent
		t.total += spent
	}
	t.current = to
	t.entered = now
	t.visits[to]++
}

// Restart clears the counters and starts timing the visible slide again
func (t *Tracker) Restart() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reset()
}

// Stats returns a snapshot
func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats()
}

func (t *Tracker) stats() Stats {
	s := Stats{
		SessionID:    t.session,
		TotalMinutes: int(math.Round(t.total.Minutes())),
		Visits:       make(map[int]int, len(t.visits)),
		Seconds:      make(map[int]float64, len(t.dwell)),
	}
	best := 0
	for n, v := range t.visits {
		s.Visits[n] = v
		// ties go to the later slide
		if v > best || (v == best && n > s.MostVisited) {
			best, s.MostVisited = v, n
		}
	}
	for n, d := range t.dwell {
		s.Seconds[n] = d.Seconds()
	}
	return s
}
