package presenter

import (
	"fmt"
	"time"
)

// DefaultTimerMinutes is the countdown length when none is configured
const DefaultTimerMinutes = 10

// Urgency is the visual state of the countdown
type Urgency int

const (
	UrgencyNone Urgency = iota
	UrgencyWarning
	UrgencyCritical
)

func (u Urgency) String() string {
	switch u {
	case UrgencyWarning:
		return "warning"
	case UrgencyCritical:
		return "critical"
	}
	return "none"
}

func (u Urgency) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

func (u *Urgency) UnmarshalText(text []byte) error {
	switch string(text) {
	case "none":
		*u = UrgencyNone
	case "warning":
		*u = UrgencyWarning
	case "critical":
		*u = UrgencyCritical
	default:
		return fmt.Errorf("unknown timer urgency %q", text)
	}
	return nil
}

// TimerState is a snapshot of the countdown
type TimerState struct {
	Minutes  int     `json:"minutes"`
	Seconds  int     `json:"seconds"`
	Running  bool    `json:"running"`
	Duration int     `json:"duration"`
	Urgency  Urgency `json:"urgency"`
	Display  string  `json:"display"`
}

// timer is the countdown state. It is guarded by the presenter lock.
type timer struct {
	duration int
	started  int // length of the live countdown
	minutes  int
	seconds  int
	running  bool
	urgency  Urgency

	// gen identifies the live interval; ticks from older intervals are dropped
	gen    int
	cancel func()
}

func newTimer(minutes int) timer {
	return timer{duration: minutes, minutes: minutes}
}

func (t *timer) display() string {
	return fmt.Sprintf("%02d:%02d", t.minutes, t.seconds)
}

// thresholds returns the minute marks for warning and critical urgency:
// 20% and 10% of the countdown, rounded up
func (t *timer) thresholds() (warning, critical int) {
	return (t.started + 4) / 5, (t.started + 9) / 10
}

func (t *timer) state() TimerState {
	return TimerState{
		Minutes:  t.minutes,
		Seconds:  t.seconds,
		Running:  t.running,
		Duration: t.duration,
		Urgency:  t.urgency,
		Display:  t.display(),
	}
}

// StartTimer starts the countdown from the configured duration. A running
// countdown is cancelled first, so only one interval is ever live.
func (p *Presenter) StartTimer() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.startTimer()
}

// StopTimer cancels the countdown and shows the configured duration again
func (p *Presenter) StopTimer() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopTimer()
}

// ResetTimer is StopTimer followed by StartTimer
func (p *Presenter) ResetTimer() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopTimer()
	p.startTimer()
}

// ToggleTimer stops a running countdown and starts an idle one
func (p *Presenter) ToggleTimer() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timer.running {
		p.stopTimer()
		return
	}
	p.startTimer()
}

// SetTimerDuration changes the countdown length in minutes. Values below one
// are ignored. A running countdown keeps going; the value applies on the
// next start.
func (p *Presenter) SetTimerDuration(minutes int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if minutes < 1 {
		return
	}
	p.timer.duration = minutes
	if !p.timer.running {
		p.timer.minutes, p.timer.seconds = minutes, 0
		p.view.SetTimer(p.timer.display(), UrgencyNone)
	}
}

// Timer returns the countdown state
func (p *Presenter) Timer() TimerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.timer.state()
}

func (p *Presenter) startTimer() {
	p.cancelTick()
	t := &p.timer
	t.started = t.duration
	t.minutes, t.seconds = t.duration, 0
	t.running = true
	t.urgency = UrgencyNone
	t.gen++
	gen := t.gen
	t.cancel = p.sched.Every(time.Second, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if !p.timer.running || p.timer.gen != gen {
			return
		}
		p.tick()
	})
	p.view.SetTimer(t.display(), t.urgency)
}

func (p *Presenter) stopTimer() {
	p.cancelTick()
	t := &p.timer
	t.running = false
	t.minutes, t.seconds = t.duration, 0
	t.urgency = UrgencyNone
	p.view.SetTimer(t.display(), t.urgency)
}

func (p *Presenter) cancelTick() {
	if p.timer.cancel != nil {
		p.timer.cancel()
		p.timer.cancel = nil
	}
	p.timer.gen++
}

func (p *Presenter) tick() {
	t := &p.timer
	if t.seconds == 0 {
		t.minutes--
		t.seconds = 59
	} else {
		t.seconds--
	}

	if t.minutes == 0 && t.seconds == 0 {
		p.cancelTick()
		t.running = false
		t.urgency = UrgencyNone
		p.view.SetTimer(t.display(), t.urgency)
		p.view.TimerExpired()
		p.log.Info("timer expired", "duration", t.duration)
		return
	}

	if t.seconds == 0 {
		warning, critical := t.thresholds()
		switch t.minutes {
		case critical:
			t.urgency = UrgencyCritical
		case warning:
			t.urgency = UrgencyWarning
		}
	}
	p.view.SetTimer(t.display(), t.urgency)
}
