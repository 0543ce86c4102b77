package hopping

import (
	"log"
	"sync"
	"time"

	"github.com/lcalzada-xor/wreveal/internal/core/ports"
)

// Hopper tunes an interface through a Rotation on a fixed dwell time.
type Hopper struct {
	Interface string

	rotation *Rotation
	switcher ports.ChannelSwitcher
	onHop    func(channel int, at time.Time)
	state    AtomicState

	mu         sync.Mutex // protects delay and errorCount
	delay      time.Duration
	errorCount int

	stopChan  chan struct{}
	stopOnce  sync.Once
	resetChan chan time.Duration
}

// NewHopper creates a Hopper. switcher defaults to the iw switcher; onHop,
// when set, is called after every successful tune.
func NewHopper(iface string, channels []int, delay time.Duration, switcher ports.ChannelSwitcher, onHop func(int, time.Time)) *Hopper {
	if switcher == nil {
		switcher = NewLinuxChannelSwitcher()
	}
	return &Hopper{
		Interface: iface,
		rotation:  NewRotation(channels),
		switcher:  switcher,
		onHop:     onHop,
		delay:     delay,
		stopChan:  make(chan struct{}),
		resetChan: make(chan time.Duration, 1),
	}
}

// State reports what the hopper is doing.
func (h *Hopper) State() HopperState { return h.state.Get() }

// Channels returns a copy of the current plan.
func (h *Hopper) Channels() []int { return h.rotation.Channels() }

// Delay returns the dwell time.
func (h *Hopper) Delay() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.delay
}

// SetChannels replaces the plan and tunes to its first channel at once. A
// single-channel plan locks the hopper on that channel.
func (h *Hopper) SetChannels(channels []int) {
	h.rotation.Set(channels)
	log.Printf("Channel hopper on %s updated to: %v", h.Interface, channels)
	if h.state.Get() == StateStopped || h.state.Get() == StateIdle {
		return
	}
	h.updateState()
	h.hop()
}

// SetDelay changes the dwell time of a running hopper.
func (h *Hopper) SetDelay(d time.Duration) {
	h.mu.Lock()
	h.delay = d
	h.mu.Unlock()
	// Keep only the latest request.
	select {
	case <-h.resetChan:
	default:
	}
	select {
	case h.resetChan <- d:
	default:
	}
}

// Stop signals the hopper to shut down. It is safe to call more than once.
func (h *Hopper) Stop() {
	h.stopOnce.Do(func() { close(h.stopChan) })
}

// Start runs the hopping loop until Stop.
func (h *Hopper) Start() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic in Hopper: %v", r)
		}
	}()

	if !h.state.CompareAndSwap(StateIdle, StateHopping) {
		return
	}
	log.Printf("Starting channel hopper on %s (dwell=%v)", h.Interface, h.Delay())

	ticker := time.NewTicker(h.Delay())
	defer ticker.Stop()

	h.updateState()
	h.hop()

	for {
		select {
		case <-h.stopChan:
			h.state.Set(StateStopped)
			log.Printf("Stopping channel hopper on %s", h.Interface)
			return
		case d := <-h.resetChan:
			ticker.Reset(d)
		case <-ticker.C:
			if h.state.Get() == StateHopping {
				h.hop()
			}
		}
	}
}

func (h *Hopper) updateState() {
	if h.rotation.Fixed() {
		h.state.Set(StateLocked)
	} else {
		h.state.Set(StateHopping)
	}
}

func (h *Hopper) hop() {
	ch, ok := h.rotation.Next()
	if !ok {
		return
	}

	err := h.switcher.SetChannel(h.Interface, ch)

	h.mu.Lock()
	if err != nil {
		h.errorCount++
		// Log the first failure and every tenth after it
		if h.errorCount == 1 || h.errorCount%10 == 0 {
			log.Printf("Warning: Failed to set channel %d: %v (Consecutive errors: %d)", ch, err, h.errorCount)
		}
		h.mu.Unlock()
		return
	}
	if h.errorCount > 0 {
		log.Printf("Hopper recovered after %d errors.", h.errorCount)
		h.errorCount = 0
	}
	h.mu.Unlock()

	if h.onHop != nil {
		h.onHop(ch, time.Now())
	}
}
