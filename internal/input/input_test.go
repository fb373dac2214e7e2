package input

import (
	"io"
	"log/slog"
	"testing"

	"github.com/joeblew999/deckshow/internal/presenter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type count int

func (c count) Len() int { return int(c) }

func newPresenter(t *testing.T, n int) *presenter.Presenter {
	t.Helper()
	p := presenter.New(count(n),
		presenter.WithScheduler(presenter.NewManualScheduler()),
		presenter.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	p.Restore("")
	t.Cleanup(p.Close)
	return p
}

// fakeActions records the actions it receives
type fakeActions struct {
	total int
	calls []string
}

func (f *fakeActions) Next()                   { f.calls = append(f.calls, "next") }
func (f *fakeActions) Previous()               { f.calls = append(f.calls, "previous") }
func (f *fakeActions) GoTo(n int)              { f.calls = append(f.calls, "goto") }
func (f *fakeActions) First()                  { f.calls = append(f.calls, "first") }
func (f *fakeActions) Last()                   { f.calls = append(f.calls, "last") }
func (f *fakeActions) Total() int              { return f.total }
func (f *fakeActions) ToggleFullscreen()       { f.calls = append(f.calls, "fullscreen") }
func (f *fakeActions) ToggleTimer()            { f.calls = append(f.calls, "timer") }
func (f *fakeActions) ResetTimer()             { f.calls = append(f.calls, "reset") }
func (f *fakeActions) TogglePresentationMode() { f.calls = append(f.calls, "mode") }
func (f *fakeActions) PointerMoved()           { f.calls = append(f.calls, "moved") }
func (f *fakeActions) Help()                   { f.calls = append(f.calls, "help") }

func TestKeyboardNavigation(t *testing.T) {
	p := newPresenter(t, 23)
	k := NewKeyboard(p)

	require.True(t, k.HandleKey("End"))
	assert.Equal(t, 23, p.Current())

	require.True(t, k.HandleKey("9"))
	assert.Equal(t, 9, p.Current())

	require.True(t, k.HandleKey("ArrowRight"))
	assert.Equal(t, 10, p.Current())
	require.True(t, k.HandleKey(" "))
	assert.Equal(t, 11, p.Current())
	require.True(t, k.HandleKey("ArrowLeft"))
	assert.Equal(t, 10, p.Current())
	require.True(t, k.HandleKey("Home"))
	assert.Equal(t, 1, p.Current())
}

func TestKeyboardIgnoresDigitsPastEnd(t *testing.T) {
	p := newPresenter(t, 5)
	k := NewKeyboard(p)
	k.HandleKey("3")

	assert.False(t, k.HandleKey("9"))
	assert.Equal(t, 3, p.Current())
	assert.True(t, k.HandleKey("5"))
	assert.Equal(t, 5, p.Current())
	assert.False(t, k.HandleKey("0"))
	assert.False(t, k.HandleKey("x"))
	assert.False(t, k.HandleKey("12"))
}

func TestKeyboardToggles(t *testing.T) {
	f := &fakeActions{total: 3}
	k := NewKeyboard(f)
	for _, key := range []string{"f", "F", "t", "T", "r", "R", "p", "P", "?"} {
		assert.True(t, k.HandleKey(key), key)
	}
	assert.Equal(t, []string{
		"fullscreen", "fullscreen", "timer", "timer", "reset", "reset", "mode", "mode", "help",
	}, f.calls)
}

func TestKeyboardDrivesTimer(t *testing.T) {
	p := newPresenter(t, 3)
	k := NewKeyboard(p)

	k.HandleKey("t")
	assert.True(t, p.Timer().Running)
	k.HandleKey("T")
	assert.False(t, p.Timer().Running)
	k.HandleKey("r")
	assert.True(t, p.Timer().Running)
}

func TestTouchSwipe(t *testing.T) {
	tests := []struct {
		name           string
		x0, y0, x1, y1 float64
		want           []string
	}{
		{"swipe left", 300, 100, 200, 110, []string{"next"}},
		{"swipe right", 200, 100, 300, 90, []string{"previous"}},
		{"too short", 300, 100, 260, 100, nil},
		{"exactly threshold", 300, 100, 250, 100, nil},
		{"mostly vertical", 300, 100, 200, 250, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeActions{}
			touch := NewTouch(f, 0)
			touch.Start(tt.x0, tt.y0)
			assert.Equal(t, tt.want != nil, touch.End(tt.x1, tt.y1))
			assert.Equal(t, tt.want, f.calls)
		})
	}
}

func TestTouchEndWithoutStart(t *testing.T) {
	f := &fakeActions{}
	touch := NewTouch(f, 10)
	assert.False(t, touch.End(0, 0))

	touch.Start(100, 0)
	assert.True(t, touch.End(80, 0))
	assert.False(t, touch.End(0, 0))
	assert.Equal(t, []string{"next"}, f.calls)
}

func TestPointer(t *testing.T) {
	f := &fakeActions{}
	ptr := NewPointer(f)

	ptr.Move()
	ptr.DoubleClick()
	assert.True(t, ptr.Click(ControlPrev))
	assert.True(t, ptr.Click(ControlNext))
	assert.True(t, ptr.Click(ControlFullscreen))
	assert.True(t, ptr.Click(ControlTitle))
	assert.False(t, ptr.Click("logo"))

	assert.Equal(t, []string{"moved", "mode", "previous", "next", "fullscreen", "goto"}, f.calls)
}

func TestPointerTitleGoesHome(t *testing.T) {
	p := newPresenter(t, 4)
	p.GoTo(3)
	NewPointer(p).Click(ControlTitle)
	assert.Equal(t, 1, p.Current())
}
