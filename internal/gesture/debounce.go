package gesture

import "time"

// DefaultCooldown is the minimum gap between two firings of the same action.
const DefaultCooldown = 200 * time.Millisecond

// Action identifies a discrete, debounced action.
type Action string

// Gate is a cooldown registry keyed by action. It never blocks: every check
// is a timestamp comparison against the last successful firing.
type Gate struct {
	cooldown  time.Duration
	overrides map[Action]time.Duration
	lastFired map[Action]time.Time
}

// NewGate creates a Gate with the given default cooldown.
// A negative cooldown is treated as zero.
func NewGate(cooldown time.Duration) *Gate {
	if cooldown < 0 {
		cooldown = 0
	}
	return &Gate{
		cooldown:  cooldown,
		overrides: make(map[Action]time.Duration),
		lastFired: make(map[Action]time.Time),
	}
}

// SetCooldown overrides the cooldown for a single action.
func (g *Gate) SetCooldown(action Action, d time.Duration) {
	if d < 0 {
		d = 0
	}
	g.overrides[action] = d
}

// Cooldown returns the cooldown that applies to action.
func (g *Gate) Cooldown(action Action) time.Duration {
	if d, ok := g.overrides[action]; ok {
		return d
	}
	return g.cooldown
}

// Ready reports whether action may fire at now, without recording anything.
func (g *Gate) Ready(action Action, now time.Time) bool {
	last, ok := g.lastFired[action]
	if !ok {
		return true
	}
	return now.Sub(last) >= g.Cooldown(action)
}

// Allow reports whether action may fire at now and, if so, records the firing.
func (g *Gate) Allow(action Action, now time.Time) bool {
	if !g.Ready(action, now) {
		return false
	}
	g.lastFired[action] = now
	return true
}

// LastFired returns when action last fired successfully.
func (g *Gate) LastFired(action Action) (time.Time, bool) {
	t, ok := g.lastFired[action]
	return t, ok
}

// Reset forgets every recorded firing.
func (g *Gate) Reset() {
	g.lastFired = make(map[Action]time.Time)
}
