package stats

import "sync"

// RehearsalStats summarizes finished rehearsal attempts, in minutes
type RehearsalStats struct {
	Active   bool `json:"active"`
	Attempts int  `json:"attempts"`
	// Best is nil until the first attempt finishes
	Best    *int    `json:"bestTime"`
	Average float64 `json:"averageTime"`
}

// Rehearsal times practice runs over a Tracker
type Rehearsal struct {
	tracker *Tracker

	mu    sync.Mutex
	stats RehearsalStats
}

// NewRehearsal creates a rehearsal recorder
func NewRehearsal(t *Tracker) *Rehearsal {
	return &Rehearsal{tracker: t}
}

// Toggle starts or finishes an attempt and reports whether one is now running.
// Starting restarts tracking; finishing records the tracked total time.
func (r *Rehearsal) Toggle() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stats.Active = !r.stats.Active
	if r.stats.Active {
		r.tracker.Restart()
		return true
	}

	minutes := r.tracker.Stats().TotalMinutes
	r.stats.Attempts++
	if r.stats.Best == nil || minutes < *r.stats.Best {
		best := minutes
		r.stats.Best = &best
	}
	n := float64(r.stats.Attempts)
	r.stats.Average = (r.stats.Average*(n-1) + float64(minutes)) / n
	return false
}

// Stats returns a copy of the rehearsal summary
func (r *Rehearsal) Stats() RehearsalStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.stats
	if s.Best != nil {
		best := *s.Best
		s.Best = &best
	}
	return s
}
