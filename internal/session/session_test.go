package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/deckshow/internal/presenter"
	"github.com/joeblew999/deckshow/runtime"
)

type fakeDeck int

func (d fakeDeck) Len() int      { return int(d) }
func (d fakeDeck) Title() string { return "STEAM en la Escuela" }
func (d fakeDeck) XML() []byte   { return []byte("<deck/>") }

func (d fakeDeck) SVG(n int) ([]byte, bool) {
	if n < 1 || n > int(d) {
		return nil, false
	}
	return []byte(fmt.Sprintf(`<svg id="s%d"></svg>`, n)), true
}

func (d fakeDeck) Titles() []string {
	out := make([]string, d)
	for i := range out {
		out[i] = fmt.Sprintf("Slide %d", i+1)
	}
	return out
}

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func newSession(t *testing.T, kv runtime.KVStore) *Session {
	t.Helper()
	s := New(context.Background(), fakeDeck(16), Options{
		KV:        kv,
		Scheduler: presenter.NewManualScheduler(),
		Log:       quiet,
	})
	t.Cleanup(s.Close)
	return s
}

func TestStartHonorsQuery(t *testing.T) {
	s := newSession(t, nil)
	s.Start("slide=4")
	assert.Equal(t, 4, s.Presenter.Current())
}

func TestStartRestoresSavedSlide(t *testing.T) {
	kv := runtime.NewMemoryKV()

	first := newSession(t, kv)
	first.Start("")
	first.Presenter.GoTo(9)

	second := newSession(t, kv)
	second.Start("")
	assert.Equal(t, 9, second.Presenter.Current())
}

func TestNavigationFeedsStats(t *testing.T) {
	s := newSession(t, nil)
	s.Start("")
	s.Presenter.Next()
	s.Presenter.Next()
	s.Presenter.Previous()

	st := s.Stats.Stats()
	assert.Equal(t, map[int]int{1: 1, 2: 2, 3: 1}, st.Visits)
	assert.Equal(t, 2, st.MostVisited)
	assert.NotEmpty(t, st.SessionID)
}

func TestRehearsalRestartsTracking(t *testing.T) {
	s := newSession(t, nil)
	s.Start("")
	s.Presenter.Next()

	assert.True(t, s.Rehearsal.Toggle())
	assert.Empty(t, s.Stats.Stats().Visits)
	assert.False(t, s.Rehearsal.Toggle())
	assert.Equal(t, 1, s.Rehearsal.Stats().Attempts)
}

func TestNote(t *testing.T) {
	s := newSession(t, nil)
	require.NoError(t, s.Store.AddNote(context.Background(), 3, "Mencionar el **35%**"))

	note, err := s.Note(3)
	require.NoError(t, err)
	assert.Equal(t, 3, note.Slide)
	assert.Equal(t, "Mencionar el **35%**", note.Text)
	assert.Contains(t, note.HTML, "<strong>35%</strong>")

	empty, err := s.Note(4)
	require.NoError(t, err)
	assert.Empty(t, empty.Text)
}

func TestOverview(t *testing.T) {
	s := newSession(t, nil)
	s.Start("slide=2")

	o := s.Overview()
	assert.Equal(t, "STEAM en la Escuela", o.Title)
	assert.Len(t, o.Titles, 16)
	assert.Equal(t, 2, o.State.Current)
	assert.Equal(t, 16, o.State.Total)
	assert.Contains(t, o.Themes, "default")
	assert.NotEmpty(t, o.Sections)
}

func TestUnknownThemeKeepsDefault(t *testing.T) {
	s := New(context.Background(), fakeDeck(3), Options{
		Scheduler: presenter.NewManualScheduler(),
		Theme:     "neon",
		Log:       quiet,
	})
	defer s.Close()
	assert.Equal(t, "default", s.Presenter.State().Theme)
}

func TestTimerMinutesOption(t *testing.T) {
	s := New(context.Background(), fakeDeck(3), Options{
		Scheduler:    presenter.NewManualScheduler(),
		TimerMinutes: 20,
		IdleHide:     time.Second,
		Log:          quiet,
	})
	defer s.Close()
	assert.Equal(t, "20:00", s.Presenter.Timer().Display)
}
