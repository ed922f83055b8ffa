package capture

import "time"

// Frame pacing defaults.
const (
	DefaultIdleFPS     = 5
	DefaultActiveFPS   = 15
	DefaultIdleTimeout = 2 * time.Second
)

// Pacer switches between an idle and an active frame rate. Motion moves it
// to active immediately; it drops back to idle after IdleTimeout without motion.
type Pacer struct {
	idleFPS     int
	activeFPS   int
	idleTimeout time.Duration

	active     bool
	lastMotion time.Time
}

// NewPacer creates a Pacer that starts idle. Non-positive values use defaults.
func NewPacer(idleFPS, activeFPS int, idleTimeout time.Duration) *Pacer {
	if idleFPS <= 0 {
		idleFPS = DefaultIdleFPS
	}
	if activeFPS <= 0 {
		activeFPS = DefaultActiveFPS
	}
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	return &Pacer{idleFPS: idleFPS, activeFPS: activeFPS, idleTimeout: idleTimeout}
}

// Observe records a motion sample and reports the frame rate to use and
// whether it changed.
func (p *Pacer) Observe(motion bool, now time.Time) (fps int, changed bool) {
	switch {
	case motion:
		p.lastMotion = now
		if !p.active {
			p.active = true
			changed = true
		}
	case p.active && now.Sub(p.lastMotion) > p.idleTimeout:
		p.active = false
		changed = true
	}
	return p.FPS(), changed
}

// Active reports whether the pacer is in the active state.
func (p *Pacer) Active() bool { return p.active }

// FPS returns the current frame rate.
func (p *Pacer) FPS() int {
	if p.active {
		return p.activeFPS
	}
	return p.idleFPS
}

// Interval returns the frame period for the current rate.
func (p *Pacer) Interval() time.Duration {
	return time.Second / time.Duration(p.FPS())
}
