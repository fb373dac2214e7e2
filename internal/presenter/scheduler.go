package presenter

import (
	"sort"
	"sync"
	"time"
)

// Scheduler runs callbacks later. Both methods return a cancel func that is
// safe to call more than once. Callbacks run on a goroutine of the
// scheduler's choosing.
type Scheduler interface {
	Every(d time.Duration, fn func()) (cancel func())
	After(d time.Duration, fn func()) (cancel func())
}

// RealScheduler schedules on wall-clock time
type RealScheduler struct{}

func (RealScheduler) Every(d time.Duration, fn func()) func() {
	ticker := time.NewTicker(d)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				fn()
			case <-done:
				return
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
	}
}

func (RealScheduler) After(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// ManualScheduler is a Scheduler driven by Advance. Callbacks run
// synchronously on the goroutine calling Advance, in due-time order.
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []*task
}

type task struct {
	id    int
	at    time.Duration
	every time.Duration
	fn    func()
	done  bool
}

// NewManualScheduler starts a manual clock at zero
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (m *ManualScheduler) Every(d time.Duration, fn func()) func() {
	return m.add(d, d, fn)
}

func (m *ManualScheduler) After(d time.Duration, fn func()) func() {
	return m.add(d, 0, fn)
}

func (m *ManualScheduler) add(d, every time.Duration, fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &task{id: m.seq, at: m.now + d, every: every, fn: fn}
	m.tasks = append(m.tasks, t)
	return func() {
		m.mu.Lock()
		t.done = true
		m.mu.Unlock()
	}
}

// Advance moves the clock forward by d, firing everything that falls due
func (m *ManualScheduler) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	for {
		next := m.due(target)
		if next == nil {
			break
		}
		m.now = next.at
		if next.every > 0 {
			next.at += next.every
		} else {
			next.done = true
		}
		fn := next.fn
		m.mu.Unlock()
		fn()
		m.mu.Lock()
	}
	m.now = target
	m.prune()
	m.mu.Unlock()
}

// Pending counts live tasks, intervals included
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prune()
	return len(m.tasks)
}

// Intervals counts live repeating tasks
func (m *ManualScheduler) Intervals() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tasks {
		if !t.done && t.every > 0 {
			n++
		}
	}
	return n
}

func (m *ManualScheduler) due(target time.Duration) *task {
	var live []*task
	for _, t := range m.tasks {
		if !t.done && t.at <= target {
			live = append(live, t)
		}
	}
	if len(live) == 0 {
		return nil
	}
	sort.Slice(live, func(i, j int) bool {
		if live[i].at != live[j].at {
			return live[i].at < live[j].at
		}
		return live[i].id < live[j].id
	})
	return live[0]
}

func (m *ManualScheduler) prune() {
	live := m.tasks[:0]
	for _, t := range m.tasks {
		if !t.done {
			live = append(live, t)
		}
	}
	m.tasks = live
}
