package scan

import (
	"sync"

	"github.com/lcalzada-xor/wreveal/internal/core/domain"
	"github.com/lcalzada-xor/wreveal/internal/core/ports"
)

// Subject fans controller events out to registered publishers. Publishers
// are called synchronously in registration order and must not block.
type Subject struct {
	observers []ports.EventPublisher
	mu        sync.RWMutex
}

// NewSubject creates a new subject.
func NewSubject() *Subject {
	return &Subject{
		observers: make([]ports.EventPublisher, 0),
	}
}

// AddObserver registers a new publisher.
func (s *Subject) AddObserver(p ports.EventPublisher) {
	if p == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, p)
}

// Publish delivers e to every observer.
func (s *Subject) Publish(e domain.Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, obs := range s.observers {
		obs.Publish(e)
	}
}
