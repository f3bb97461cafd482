package pinchzoom

import (
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// AnimationStatus reports where an Animation is in its run.
type AnimationStatus uint8

const (
	AnimationDismissed AnimationStatus = iota // never started, or stopped
	AnimationForward                          // running toward 1
	AnimationCompleted                        // reached 1
)

// String returns a short name for the status.
func (s AnimationStatus) String() string {
	switch s {
	case AnimationDismissed:
		return "dismissed"
	case AnimationForward:
		return "forward"
	case AnimationCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Animation drives an eased progress value from 0 to 1 over Duration.
// Callers advance it with Update(dt) once per frame; OnTick receives each
// eased value and OnComplete fires once when 1 is reached.
//
// There is no global animation manager. The owner ticks its animations,
// typically from a node's OnUpdate hook.
type Animation struct {
	Duration time.Duration
	Curve    ease.TweenFunc

	// OnTick is called with the eased progress after every Update while running.
	OnTick func(v float64)
	// OnComplete is called once when the animation reaches the end.
	OnComplete func()

	tween    *gween.Tween
	status   AnimationStatus
	value    float64
	disposed bool
}

// NewAnimation creates a dismissed animation. A nil curve is linear.
func NewAnimation(d time.Duration, curve ease.TweenFunc) *Animation {
	if curve == nil {
		curve = ease.Linear
	}
	return &Animation{Duration: d, Curve: curve}
}

// Start restarts the animation from 0, discarding any run in progress.
func (a *Animation) Start() {
	if a.disposed {
		return
	}
	curve := a.Curve
	if curve == nil {
		curve = ease.Linear
	}
	a.tween = nil
	if a.Duration > 0 {
		a.tween = gween.New(0, 1, float32(a.Duration.Seconds()), curve)
	}
	a.value = 0
	a.status = AnimationForward
}

// Stop halts the animation at its current value without completing it.
func (a *Animation) Stop() {
	if a.status == AnimationForward {
		a.status = AnimationDismissed
	}
}

// Update advances a running animation by dt seconds. A non-positive
// Duration completes on the first Update after Start.
func (a *Animation) Update(dt float64) {
	if a.disposed || a.status != AnimationForward {
		return
	}
	finished := true
	a.value = 1
	if a.tween != nil {
		v, done := a.tween.Update(float32(dt))
		a.value = float64(v)
		finished = done
		if finished {
			a.value = 1
		}
	}
	if a.OnTick != nil {
		a.OnTick(a.value)
	}
	if !finished || a.disposed || a.status != AnimationForward {
		return
	}
	a.status = AnimationCompleted
	if a.OnComplete != nil {
		a.OnComplete()
	}
}

// Value returns the most recent eased progress.
func (a *Animation) Value() float64 {
	return a.value
}

// Status returns the animation's status.
func (a *Animation) Status() AnimationStatus {
	return a.status
}

// IsAnimating reports whether the animation is running.
func (a *Animation) IsAnimating() bool {
	return a.status == AnimationForward
}

// Dispose stops the animation and drops its callbacks. Later Start and
// Update calls do nothing.
func (a *Animation) Dispose() {
	a.Stop()
	a.disposed = true
	a.tween = nil
	a.OnTick = nil
	a.OnComplete = nil
}

// IsDisposed reports whether Dispose has been called.
func (a *Animation) IsDisposed() bool {
	return a.disposed
}

// --- Timer ---

// Timer runs a callback once after a delay measured in Update time. It never
// spawns goroutines; the callback runs inside the Update that expires it.
type Timer struct {
	fn        func()
	remaining time.Duration
	active    bool
}

// NewTimer creates a running timer that calls fn after d.
func NewTimer(d time.Duration, fn func()) *Timer {
	return &Timer{fn: fn, remaining: d, active: true}
}

// Reset restarts the timer with a new delay.
func (t *Timer) Reset(d time.Duration) {
	t.remaining = d
	t.active = true
}

// Stop cancels the timer. The callback will not run.
func (t *Timer) Stop() {
	t.active = false
}

// Active reports whether the timer is still waiting to fire.
func (t *Timer) Active() bool {
	return t.active
}

// Remaining returns the time left before the timer fires.
func (t *Timer) Remaining() time.Duration {
	if !t.active {
		return 0
	}
	return t.remaining
}

// Update advances the timer by dt seconds and fires it when the delay has
// elapsed.
func (t *Timer) Update(dt float64) {
	if !t.active {
		return
	}
	t.remaining -= time.Duration(dt * float64(time.Second))
	if t.remaining > 0 {
		return
	}
	t.active = false
	if t.fn != nil {
		t.fn()
	}
}
