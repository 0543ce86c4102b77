package hopping

import "sync"

// Rotation is a round-robin walk over a channel plan.
type Rotation struct {
	mu       sync.Mutex
	channels []int
	index    int
	current  int
}

// NewRotation creates a rotation over a copy of channels.
func NewRotation(channels []int) *Rotation {
	r := &Rotation{}
	r.Set(channels)
	return r
}

// Next advances to the following channel. It reports false for an empty plan.
func (r *Rotation) Next() (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.channels) == 0 {
		return 0, false
	}
	if r.index >= len(r.channels) {
		r.index = 0
	}
	r.current = r.channels[r.index]
	r.index = (r.index + 1) % len(r.channels)
	return r.current, true
}

// Set replaces the plan and restarts from its first channel.
func (r *Rotation) Set(channels []int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.channels = append([]int(nil), channels...)
	r.index = 0
}

// Channels returns a copy of the plan.
func (r *Rotation) Channels() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.channels...)
}

// Current is the channel last returned by Next, 0 before the first call.
func (r *Rotation) Current() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Fixed reports whether the plan has a single channel.
func (r *Rotation) Fixed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.channels) == 1
}
