package clock

import (
	"sync"
	"time"
)

// Simulated is a time source that advances only when a driver steps it
// forward. It is safe for concurrent readers and steppers.
type Simulated struct {
	// mu protects now.
	mu sync.RWMutex
	// now is the current simulated timestamp.
	now Micros
}

// NewSimulated returns a simulated time source positioned at zero.
func NewSimulated() *Simulated {
	return &Simulated{}
}

// Now returns the current simulated timestamp.
func (s *Simulated) Now() (Micros, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.now, nil
}

// Step advances the clock by d and returns the new timestamp.
// Non-positive durations leave the clock unchanged.
func (s *Simulated) Step(d time.Duration) Micros {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d > 0 {
		s.now += Micros(d / time.Microsecond)
	}

	return s.now
}

// Set moves the clock to t. Attempts to move backwards are ignored so the
// source stays monotonic.
func (s *Simulated) Set(t Micros) Micros {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t > s.now {
		s.now = t
	}

	return s.now
}
