package clock

import (
	"math"
	"time"
)

// Micros is an absolute timestamp in microseconds on a monotonic time source.
type Micros uint64

// Never is the reserved trigger-time sentinel meaning "never fire".
// Arming an alarm with Never disarms it.
const Never Micros = math.MaxUint64

// maxSubMicros is the widest gap Sub can represent without overflowing the
// nanosecond-based time.Duration.
const maxSubMicros = Micros(math.MaxInt64 / int64(time.Microsecond))

// Sub returns m - m2 as a duration, saturating at zero when m2 is not
// earlier than m and at the maximum Duration when the gap is too wide for
// the nanosecond representation.
func (m Micros) Sub(m2 Micros) time.Duration {
	if m2 >= m {
		return 0
	}

	if delta := m - m2; delta <= maxSubMicros {
		return time.Duration(delta) * time.Microsecond
	}

	return math.MaxInt64
}

// Add returns m shifted forward by d. Negative durations are not supported.
func (m Micros) Add(d time.Duration) Micros {
	return m + Micros(d/time.Microsecond)
}

// Source is a monotonic microsecond clock. Implementations must never move
// backwards. The error return is reserved for external clock hardware; the
// sources in this package always return nil.
type Source interface {
	Now() (Micros, error)
}

// System reads real monotonic time, reported as microseconds since the
// source was created.
type System struct {
	base time.Time
}

// NewSystem returns a system time source starting at zero.
func NewSystem() *System {
	return &System{base: time.Now()}
}

// Now returns the microseconds elapsed since the source was created.
func (s *System) Now() (Micros, error) {
	return Micros(time.Since(s.base) / time.Microsecond), nil
}
