// Package input translates raw keyboard, touch and pointer events into
// presenter actions. Adapters hold the action surface they drive; there is
// no package state.
package input

import "math"

// DefaultSwipeThreshold is the horizontal travel, in pixels, a touch must
// exceed to count as a swipe
const DefaultSwipeThreshold = 50.0

// Actions is the presenter surface the adapters drive
type Actions interface {
	Next()
	Previous()
	GoTo(n int)
	First()
	Last()
	Total() int
	ToggleFullscreen()
	ToggleTimer()
	ResetTimer()
	TogglePresentationMode()
	PointerMoved()
	Help()
}

// Keyboard dispatches key names as reported by the DOM KeyboardEvent.key
type Keyboard struct {
	actions Actions
}

// NewKeyboard creates a keyboard adapter
func NewKeyboard(a Actions) *Keyboard {
	return &Keyboard{actions: a}
}

// HandleKey runs the action bound to key and reports whether one was bound.
// Digits beyond the slide count are not handled.
func (k *Keyboard) HandleKey(key string) bool {
	switch key {
	case "ArrowRight", " ", "Space", "Spacebar":
		k.actions.Next()
	case "ArrowLeft":
		k.actions.Previous()
	case "Home":
		k.actions.First()
	case "End":
		k.actions.Last()
	case "f", "F":
		k.actions.ToggleFullscreen()
	case "t", "T":
		k.actions.ToggleTimer()
	case "r", "R":
		k.actions.ResetTimer()
	case "p", "P":
		k.actions.TogglePresentationMode()
	case "?":
		k.actions.Help()
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			n := int(key[0] - '0')
			if n > k.actions.Total() {
				return false
			}
			k.actions.GoTo(n)
			return true
		}
		return false
	}
	return true
}

// Touch classifies single-finger gestures as horizontal swipes
type Touch struct {
	actions   Actions
	threshold float64

	startX, startY float64
	active         bool
}

// NewTouch creates a touch adapter; a threshold <= 0 uses the default
func NewTouch(a Actions, threshold float64) *Touch {
	if threshold <= 0 {
		threshold = DefaultSwipeThreshold
	}
	return &Touch{actions: a, threshold: threshold}
}

// Start records where a gesture began
func (t *Touch) Start(x, y float64) {
	t.startX, t.startY = x, y
	t.active = true
}

// End finishes the gesture. A leftward swipe goes to the next slide and a
// rightward one to the previous. It reports whether the gesture was a swipe.
func (t *Touch) End(x, y float64) bool {
	if !t.active {
		return false
	}
	t.active = false

	dx := t.startX - x
	dy := t.startY - y
	if math.Abs(dx) <= t.threshold || math.Abs(dx) <= math.Abs(dy) {
		return false
	}
	if dx > 0 {
		t.actions.Next()
	} else {
		t.actions.Previous()
	}
	return true
}

// Named clickable controls
const (
	ControlPrev       = "prev"
	ControlNext       = "next"
	ControlFullscreen = "fullscreen"
	ControlTitle      = "title"
)

// Pointer handles mouse movement and clicks
type Pointer struct {
	actions Actions
}

// NewPointer creates a pointer adapter
func NewPointer(a Actions) *Pointer {
	return &Pointer{actions: a}
}

// Move reports pointer movement
func (p *Pointer) Move() {
	p.actions.PointerMoved()
}

// DoubleClick toggles presentation mode
func (p *Pointer) DoubleClick() {
	p.actions.TogglePresentationMode()
}

// Click runs the action of a named control and reports whether the name was known
func (p *Pointer) Click(control string) bool {
	switch control {
	case ControlPrev:
		p.actions.Previous()
	case ControlNext:
		p.actions.Next()
	case ControlFullscreen:
		p.actions.ToggleFullscreen()
	case ControlTitle:
		p.actions.GoTo(1)
	default:
		return false
	}
	return true
}
