package stats

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/deckshow/internal/presenter"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *clock {
	return &clock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func TestTrackerCountsVisitsAndDwell(t *testing.T) {
	c := newClock()
	tr := NewTracker(c.now)

	tr.OnNavigate(0, 1)
	c.advance(2 * time.Minute)
	tr.OnNavigate(1, 2)
	c.advance(30 * time.Second)
	tr.OnNavigate(2, 1)
	c.advance(time.Minute)
	tr.OnNavigate(1, 3)

	s := tr.Stats()
	assert.Equal(t, map[int]int{1: 2, 2: 1, 3: 1}, s.Visits)
	assert.Equal(t, 1, s.MostVisited)
	assert.Equal(t, 4, s.TotalMinutes)
	assert.InDelta(t, 180, s.Seconds[1], 0.001)
	assert.InDelta(t, 30, s.Seconds[2], 0.001)
	_, err := uuid.Parse(s.SessionID)
	assert.NoError(t, err)
}

func TestTrackerIgnoresSameSlide(t *testing.T) {
	tr := NewTracker(newClock().now)
	tr.OnNavigate(0, 4)
	tr.OnNavigate(4, 4)
	assert.Equal(t, map[int]int{4: 1}, tr.Stats().Visits)
}

func TestTrackerEmpty(t *testing.T) {
	s := NewTracker(nil).Stats()
	assert.Zero(t, s.MostVisited)
	assert.Zero(t, s.TotalMinutes)
	assert.Empty(t, s.Visits)
}

func TestMostVisitedTieGoesToLaterSlide(t *testing.T) {
	tr := NewTracker(newClock().now)
	tr.OnNavigate(0, 5)
	tr.OnNavigate(5, 2)
	assert.Equal(t, 5, tr.Stats().MostVisited)
}

type slides int

func (s slides) Len() int { return int(s) }

func TestTrackerAsNavigateHook(t *testing.T) {
	c := newClock()
	tr := NewTracker(c.now)
	p := presenter.New(slides(3),
		presenter.WithNavigateHook(tr.OnNavigate),
		presenter.WithScheduler(presenter.NewManualScheduler()),
		presenter.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	defer p.Close()

	p.Restore("")
	c.advance(90 * time.Second)
	p.Next()
	p.Next()
	p.Next()

	s := tr.Stats()
	assert.Equal(t, map[int]int{1: 2, 2: 1, 3: 1}, s.Visits)
	assert.Equal(t, 2, s.TotalMinutes)
}

func TestRehearsal(t *testing.T) {
	c := newClock()
	tr := NewTracker(c.now)
	r := NewRehearsal(tr)
	assert.Nil(t, r.Stats().Best)

	tr.OnNavigate(0, 1)
	c.advance(10 * time.Minute)

	// starting restarts tracking, so earlier time is not counted
	require.True(t, r.Toggle())
	c.advance(6 * time.Minute)
	tr.OnNavigate(1, 2)
	require.False(t, r.Toggle())

	s := r.Stats()
	assert.Equal(t, 1, s.Attempts)
	require.NotNil(t, s.Best)
	assert.Equal(t, 6, *s.Best)
	assert.InDelta(t, 6, s.Average, 0.001)

	r.Toggle()
	c.advance(10 * time.Minute)
	tr.OnNavigate(2, 3)
	r.Toggle()

	s = r.Stats()
	assert.Equal(t, 2, s.Attempts)
	assert.Equal(t, 6, *s.Best)
	assert.InDelta(t, 8, s.Average, 0.001)
	assert.False(t, s.Active)
}
