package state

import "sync"

// Intent is a per-session joystick slot holding the latest safety-filtered
// velocity pair and the session's connected flag. The intake sub-task is
// the writer; the dispatch sub-task reads at its own cadence.
type Intent struct {
	mu        sync.RWMutex
	linear    float64
	angular   float64
	connected bool
}

// NewIntent creates an intent with zero velocity, marked connected.
func NewIntent() *Intent {
	return &Intent{connected: true}
}

// Set stores a filtered velocity pair. Last write wins.
func (i *Intent) Set(linear, angular float64) {
	i.mu.Lock()
	i.linear = linear
	i.angular = angular
	i.mu.Unlock()
}

// Velocity returns the most recent filtered velocity pair.
func (i *Intent) Velocity() (linear, angular float64) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.linear, i.angular
}

// Disconnect clears the connected flag.
func (i *Intent) Disconnect() {
	i.mu.Lock()
	i.connected = false
	i.mu.Unlock()
}

// Connected reports whether the session is still active.
func (i *Intent) Connected() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.connected
}
