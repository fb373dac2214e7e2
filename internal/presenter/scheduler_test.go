package presenter

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualSchedulerOrder(t *testing.T) {
	s := NewManualScheduler()
	var got []string
	s.After(3*time.Second, func() { got = append(got, "after3") })
	s.Every(2*time.Second, func() { got = append(got, "every2") })
	cancel := s.After(time.Second, func() { got = append(got, "cancelled") })
	cancel()
	cancel()

	s.Advance(4 * time.Second)
	assert.Equal(t, []string{"every2", "after3", "every2"}, got)
	assert.Equal(t, 1, s.Pending())
	assert.Equal(t, 1, s.Intervals())
}

func TestManualSchedulerCallbackSchedules(t *testing.T) {
	s := NewManualScheduler()
	fired := 0
	s.After(time.Second, func() {
		s.After(time.Second, func() { fired++ })
	})

	s.Advance(2 * time.Second)
	assert.Equal(t, 1, fired)
	assert.Zero(t, s.Pending())
}

func TestRealScheduler(t *testing.T) {
	var ticks atomic.Int32
	cancel := RealScheduler{}.Every(5*time.Millisecond, func() { ticks.Add(1) })
	assert.Eventually(t, func() bool { return ticks.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()
	cancel()

	done := make(chan struct{})
	RealScheduler{}.After(time.Millisecond, func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("After callback never ran")
	}
}
