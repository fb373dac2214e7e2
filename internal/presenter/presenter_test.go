package presenter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type count int

func (c count) Len() int { return int(c) }

// recordingView keeps the visible state and a log of calls
type recordingView struct {
	mu           sync.Mutex
	calls        []string
	active       map[int]bool
	counter      string
	prev, next   bool
	timer        string
	urgency      Urgency
	expired      int
	presenting   bool
	chrome       bool
	fullscreenOK bool
	theme        string
	vars         map[string]string
	help         string
}

func newRecordingView() *recordingView {
	return &recordingView{active: make(map[int]bool), chrome: true, fullscreenOK: true}
}

func (v *recordingView) record(format string, args ...any) {
	v.calls = append(v.calls, fmt.Sprintf(format, args...))
}

func (v *recordingView) Deactivate(n int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.active, n)
	v.record("deactivate %d", n)
}

func (v *recordingView) Activate(n int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.active[n] = true
	v.record("activate %d", n)
}

func (v *recordingView) SetCounter(current, total int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.counter = fmt.Sprintf("%d / %d", current, total)
	v.record("counter %s", v.counter)
}

func (v *recordingView) SetControls(prev, next bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.prev, v.next = prev, next
	v.record("controls %t %t", prev, next)
}

func (v *recordingView) SetTimer(display string, urgency Urgency) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.timer, v.urgency = display, urgency
}

func (v *recordingView) TimerExpired() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.expired++
}

func (v *recordingView) SetPresentationMode(on bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.presenting = on
}

func (v *recordingView) SetChromeVisible(visible bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.chrome = visible
}

func (v *recordingView) SetFullscreen(on bool) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.fullscreenOK {
		return errors.New("permission denied")
	}
	return nil
}

func (v *recordingView) SetTheme(name string, vars map[string]string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.theme, v.vars = name, vars
}

func (v *recordingView) ShowHelp(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.help = text
}

type effectsFunc func(int)

func (f effectsFunc) Dispatch(n int) { f(n) }

type memSlideStore struct {
	saved int
	ok    bool
	log   func(string, ...any)
}

func (s *memSlideStore) SaveCurrent(n int) {
	s.saved, s.ok = n, true
	if s.log != nil {
		s.log("save %d", n)
	}
}

func (s *memSlideStore) LoadCurrent() (int, bool) { return s.saved, s.ok }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestPresenter(t *testing.T, n int, opts ...Option) (*Presenter, *recordingView, *ManualScheduler) {
	t.Helper()
	view := newRecordingView()
	sched := NewManualScheduler()
	base := []Option{WithView(view), WithScheduler(sched), WithLogger(quietLogger())}
	p := New(count(n), append(base, opts...)...)
	t.Cleanup(p.Close)
	return p, view, sched
}

func TestGoToActivatesExactlyOneSlide(t *testing.T) {
	p, view, _ := newTestPresenter(t, 7)
	p.Restore("")

	for n := 1; n <= 7; n++ {
		p.GoTo(n)
		assert.Equal(t, map[int]bool{n: true}, view.active, "goto %d", n)
		assert.Equal(t, n, p.Current())
	}
	for _, n := range []int{4, 1, 7, 2} {
		p.GoTo(n)
		assert.Equal(t, map[int]bool{n: true}, view.active, "goto %d", n)
	}
}

func TestNavigationWraps(t *testing.T) {
	p, view, _ := newTestPresenter(t, 5)
	p.Restore("")

	p.Last()
	p.Next()
	assert.Equal(t, 1, p.Current())
	assert.Equal(t, "1 / 5", view.counter)

	p.Previous()
	assert.Equal(t, 5, p.Current())
	assert.Equal(t, "5 / 5", view.counter)

	p.Previous()
	assert.Equal(t, 4, p.Current())
	p.Next()
	p.Next()
	assert.Equal(t, 1, p.Current())
}

func TestGoToOutOfRangeIsIgnored(t *testing.T) {
	p, view, _ := newTestPresenter(t, 5)
	p.Restore("")
	p.GoTo(3)
	calls := len(view.calls)

	p.GoTo(0)
	p.GoTo(6)
	p.GoTo(-1)

	assert.Equal(t, 3, p.Current())
	assert.Len(t, view.calls, calls)
}

func TestActivationOrder(t *testing.T) {
	view := newRecordingView()
	store := &memSlideStore{log: view.record}
	p := New(count(5),
		WithView(view),
		WithScheduler(NewManualScheduler()),
		WithLogger(quietLogger()),
		WithStore(store),
		WithEffects(effectsFunc(func(n int) { view.record("effects %d", n) })),
		WithNavigateHook(func(from, to int) { view.record("hook %d %d", from, to) }),
	)
	p.Restore("")
	view.calls = nil

	p.GoTo(2)
	assert.Equal(t, []string{
		"deactivate 1",
		"activate 2",
		"counter 2 / 5",
		"controls true true",
		"effects 2",
		"save 2",
		"hook 1 2",
	}, view.calls)
}

func TestReplayEffects(t *testing.T) {
	var got []int
	p := New(count(5),
		WithScheduler(NewManualScheduler()),
		WithLogger(quietLogger()),
		WithEffects(effectsFunc(func(n int) { got = append(got, n) })),
	)
	p.ReplayEffects()
	assert.Empty(t, got)

	p.Restore("slide=4")
	p.ReplayEffects()
	assert.Equal(t, []int{4, 4}, got)
	assert.Equal(t, 4, p.Current())
}

func TestControlsAtEdges(t *testing.T) {
	p, view, _ := newTestPresenter(t, 3)
	p.Restore("")
	assert.False(t, view.prev)
	assert.True(t, view.next)

	p.GoTo(3)
	assert.True(t, view.prev)
	assert.False(t, view.next)

	single, view1, _ := newTestPresenter(t, 1)
	single.Restore("")
	single.Next()
	assert.Equal(t, 1, single.Current())
	assert.False(t, view1.prev)
	assert.False(t, view1.next)
}

func TestRestore(t *testing.T) {
	tests := []struct {
		name  string
		store *memSlideStore
		query string
		want  int
	}{
		{"nothing saved", nil, "", 1},
		{"saved slide", &memSlideStore{saved: 4, ok: true}, "", 4},
		{"query wins", &memSlideStore{saved: 4, ok: true}, "slide=2", 2},
		{"leading question mark", nil, "?slide=3", 3},
		{"query out of range", &memSlideStore{saved: 4, ok: true}, "slide=99", 4},
		{"query not a number", &memSlideStore{saved: 4, ok: true}, "slide=abc", 4},
		{"saved out of range", &memSlideStore{saved: 9, ok: true}, "", 1},
		{"saved zero", &memSlideStore{saved: 0, ok: true}, "slide=0", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []Option
			if tt.store != nil {
				opts = append(opts, WithStore(tt.store))
			}
			p, view, _ := newTestPresenter(t, 5, opts...)
			p.Restore(tt.query)
			assert.Equal(t, tt.want, p.Current())
			assert.Equal(t, map[int]bool{tt.want: true}, view.active)
			if tt.store != nil {
				assert.Equal(t, tt.want, tt.store.saved)
			}
		})
	}
}

func TestNavigateHookSeesFirstActivation(t *testing.T) {
	var seen [][2]int
	p, _, _ := newTestPresenter(t, 4, WithNavigateHook(func(from, to int) {
		seen = append(seen, [2]int{from, to})
	}))
	p.Restore("slide=2")
	p.Next()
	p.GoTo(2)
	assert.Equal(t, [][2]int{{0, 2}, {2, 3}, {3, 2}}, seen)
}

func TestTimerExpiresAfterDurationTicks(t *testing.T) {
	p, view, sched := newTestPresenter(t, 3)
	p.StartTimer()
	assert.Equal(t, "10:00", view.timer)

	sched.Advance(599 * time.Second)
	state := p.Timer()
	assert.True(t, state.Running)
	assert.Equal(t, "00:01", state.Display)
	assert.Zero(t, view.expired)

	sched.Advance(time.Second)
	state = p.Timer()
	assert.False(t, state.Running)
	assert.Equal(t, 1, view.expired)
	assert.Equal(t, "00:00", view.timer)
	assert.Zero(t, sched.Intervals())

	sched.Advance(time.Hour)
	assert.Equal(t, 1, view.expired)
}

func TestTimerRestartKeepsOneTickSource(t *testing.T) {
	p, view, sched := newTestPresenter(t, 3)
	p.StartTimer()
	sched.Advance(5 * time.Second)
	assert.Equal(t, "09:55", view.timer)

	p.StartTimer()
	p.StartTimer()
	assert.Equal(t, 1, sched.Intervals())
	assert.Equal(t, "10:00", view.timer)

	sched.Advance(time.Second)
	assert.Equal(t, "09:59", view.timer)

	p.ResetTimer()
	assert.Equal(t, 1, sched.Intervals())
	sched.Advance(3 * time.Second)
	assert.Equal(t, "09:57", view.timer)
}

func TestTimerUrgency(t *testing.T) {
	p, view, sched := newTestPresenter(t, 3)
	p.StartTimer()

	sched.Advance(479 * time.Second)
	assert.Equal(t, "02:01", view.timer)
	assert.Equal(t, UrgencyNone, view.urgency)

	sched.Advance(time.Second)
	assert.Equal(t, "02:00", view.timer)
	assert.Equal(t, UrgencyWarning, view.urgency)

	sched.Advance(30 * time.Second)
	assert.Equal(t, UrgencyWarning, view.urgency)

	sched.Advance(30 * time.Second)
	assert.Equal(t, "01:00", view.timer)
	assert.Equal(t, UrgencyCritical, view.urgency)

	p.StopTimer()
	assert.Equal(t, UrgencyNone, view.urgency)
	assert.Equal(t, "10:00", view.timer)
}

func TestTimerThresholdsScale(t *testing.T) {
	p, view, sched := newTestPresenter(t, 3, WithTimerMinutes(30))
	p.StartTimer()

	// 20% of 30 is 6 minutes, 10% is 3
	sched.Advance(24 * time.Minute)
	assert.Equal(t, "06:00", view.timer)
	assert.Equal(t, UrgencyWarning, view.urgency)

	sched.Advance(3 * time.Minute)
	assert.Equal(t, UrgencyCritical, view.urgency)
}

func TestStateDecodesUrgency(t *testing.T) {
	p, _, sched := newTestPresenter(t, 3)
	p.StartTimer()
	sched.Advance(9 * time.Minute)

	data, err := json.Marshal(p.State())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"urgency":"critical"`)

	var got State
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, p.State(), got)

	for _, u := range []Urgency{UrgencyNone, UrgencyWarning, UrgencyCritical} {
		text, err := u.MarshalText()
		require.NoError(t, err)
		var back Urgency
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, u, back)
	}

	var bad Urgency
	assert.Error(t, bad.UnmarshalText([]byte("panic")))
}

func TestTimerStopAndToggle(t *testing.T) {
	p, view, sched := newTestPresenter(t, 3)

	p.ToggleTimer()
	assert.True(t, p.Timer().Running)
	sched.Advance(10 * time.Second)

	p.ToggleTimer()
	state := p.Timer()
	assert.False(t, state.Running)
	assert.Equal(t, "10:00", state.Display)
	assert.Equal(t, "10:00", view.timer)
	assert.Zero(t, sched.Intervals())

	sched.Advance(10 * time.Second)
	assert.Equal(t, "10:00", p.Timer().Display)
}

func TestSetTimerDurationWhileRunning(t *testing.T) {
	p, view, sched := newTestPresenter(t, 3)
	p.StartTimer()
	sched.Advance(10 * time.Second)

	p.SetTimerDuration(5)
	state := p.Timer()
	assert.True(t, state.Running)
	assert.Equal(t, "09:50", state.Display)
	assert.Equal(t, 5, state.Duration)

	sched.Advance(time.Second)
	assert.Equal(t, "09:49", view.timer)

	p.ResetTimer()
	assert.Equal(t, "05:00", view.timer)
}

func TestSetTimerDurationWhileIdle(t *testing.T) {
	p, view, _ := newTestPresenter(t, 3)

	p.SetTimerDuration(15)
	assert.Equal(t, "15:00", view.timer)

	p.SetTimerDuration(0)
	p.SetTimerDuration(-3)
	assert.Equal(t, 15, p.Timer().Duration)

	p.StartTimer()
	assert.Equal(t, "15:00", view.timer)
}

func TestFullscreen(t *testing.T) {
	p, view, _ := newTestPresenter(t, 3)

	p.ToggleFullscreen()
	assert.True(t, p.State().Fullscreen)

	view.fullscreenOK = false
	p.ToggleFullscreen()
	assert.True(t, p.State().Fullscreen)

	p.FullscreenChanged(false)
	assert.False(t, p.State().Fullscreen)
	p.ToggleFullscreen()
	assert.False(t, p.State().Fullscreen)
}

func TestChromeHidesOnlyInPresentationMode(t *testing.T) {
	p, view, sched := newTestPresenter(t, 3)

	p.PointerMoved()
	sched.Advance(DefaultIdleHide)
	assert.True(t, view.chrome)

	p.TogglePresentationMode()
	assert.True(t, view.presenting)
	p.PointerMoved()
	sched.Advance(2 * time.Second)
	assert.True(t, view.chrome)

	p.PointerMoved()
	sched.Advance(2 * time.Second)
	assert.True(t, view.chrome)
	sched.Advance(time.Second)
	assert.False(t, view.chrome)
	assert.True(t, p.State().ChromeHidden)

	p.PointerMoved()
	assert.True(t, view.chrome)

	p.TogglePresentationMode()
	sched.Advance(time.Minute)
	assert.True(t, view.chrome)
	assert.False(t, p.Presenting())
}

func TestChromeHidePendingWhenModeEnds(t *testing.T) {
	p, view, sched := newTestPresenter(t, 3)
	p.PointerMoved()
	p.TogglePresentationMode()
	p.TogglePresentationMode()
	sched.Advance(DefaultIdleHide)
	assert.True(t, view.chrome)
}

func TestSections(t *testing.T) {
	p, _, _ := newTestPresenter(t, 23)
	p.Restore("")

	assert.True(t, p.JumpToSection("results"))
	assert.Equal(t, 11, p.Current())
	assert.True(t, p.JumpToSection(" Thanks "))
	assert.Equal(t, 22, p.Current())
	assert.False(t, p.JumpToSection("appendix"))
	assert.Equal(t, 22, p.Current())

	short, _, _ := newTestPresenter(t, 5)
	short.Restore("")
	assert.False(t, short.JumpToSection("results"))
	assert.Equal(t, 1, short.Current())

	custom, _, _ := newTestPresenter(t, 5, WithSections(map[string]int{"Demo": 4}))
	custom.Restore("")
	assert.True(t, custom.JumpToSection("demo"))
	assert.Equal(t, 4, custom.Current())
	assert.Equal(t, map[string]int{"demo": 4}, custom.Sections())
}

func TestThemes(t *testing.T) {
	p, view, _ := newTestPresenter(t, 3)

	require.True(t, p.SetTheme("dark"))
	assert.Equal(t, "dark", view.theme)
	assert.Equal(t, "#333366", view.vars["--primary-color"])
	assert.Equal(t, "dark", p.State().Theme)

	assert.False(t, p.SetTheme("neon"))
	assert.Equal(t, "dark", p.State().Theme)
	assert.Equal(t, []string{"dark", "default", "light"}, p.Themes())
}

func TestHelp(t *testing.T) {
	p, view, _ := newTestPresenter(t, 3)
	p.Help()
	assert.Equal(t, HelpText, view.help)
}

func TestMultiView(t *testing.T) {
	a, b := newRecordingView(), newRecordingView()
	b.fullscreenOK = false
	mv := MultiView{a, b}

	mv.Activate(2)
	assert.True(t, a.active[2])
	assert.True(t, b.active[2])
	assert.Error(t, mv.SetFullscreen(true))
}
