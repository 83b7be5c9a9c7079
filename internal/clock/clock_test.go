package clock

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestSystemMonotonic verifies the system source never moves backwards.
func TestSystemMonotonic(t *testing.T) {
	t.Parallel()

	src := NewSystem()

	prev, err := src.Now()
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		cur, err := src.Now()
		require.NoError(t, err)
		require.GreaterOrEqual(t, cur, prev)

		prev = cur
	}
}

// TestMicrosArithmetic checks Sub/Add conversions between Micros and Duration.
func TestMicrosArithmetic(t *testing.T) {
	t.Parallel()

	base := Micros(1_000_000)
	later := base.Add(250 * time.Millisecond)

	require.Equal(t, Micros(1_250_000), later)
	require.Equal(t, 250*time.Millisecond, later.Sub(base))
}

// TestMicrosSubSaturates verifies Sub never goes negative for reversed
// operands and never overflows for gaps wider than Duration can hold, such
// as a trigger time just below the Never sentinel.
func TestMicrosSubSaturates(t *testing.T) {
	t.Parallel()

	require.Equal(t, time.Duration(0), Micros(5).Sub(Micros(10)))
	require.Equal(t, time.Duration(0), Micros(10).Sub(Micros(10)))

	huge := (Never - 1).Sub(Micros(0))
	require.Positive(t, huge)
	require.Equal(t, time.Duration(math.MaxInt64), huge)

	// The widest representable gap still converts exactly.
	exact := maxSubMicros
	require.Equal(t, time.Duration(exact)*time.Microsecond, Micros(exact).Sub(Micros(0)))
}

// TestSimulatedStep verifies stepping advances the clock and ignores
// non-positive steps.
func TestSimulatedStep(t *testing.T) {
	t.Parallel()

	src := NewSimulated()

	now, err := src.Now()
	require.NoError(t, err)
	require.Equal(t, Micros(0), now)

	require.Equal(t, Micros(5_000), src.Step(5*time.Millisecond))
	require.Equal(t, Micros(5_000), src.Step(0))
	require.Equal(t, Micros(5_000), src.Step(-time.Second))

	now, err = src.Now()
	require.NoError(t, err)
	require.Equal(t, Micros(5_000), now)
}

// TestSimulatedSetMonotonic verifies Set refuses to move the clock backwards.
func TestSimulatedSetMonotonic(t *testing.T) {
	t.Parallel()

	src := NewSimulated()

	require.Equal(t, Micros(100), src.Set(100))
	require.Equal(t, Micros(100), src.Set(50))
	require.Equal(t, Micros(200), src.Set(200))
}

// TestSimulatedConcurrentReaders steps the clock while readers poll it and
// verifies every reader observes a monotonic sequence.
func TestSimulatedConcurrentReaders(t *testing.T) {
	t.Parallel()

	src := NewSimulated()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			var prev Micros
			for j := 0; j < 1000; j++ {
				cur, err := src.Now()
				require.NoError(t, err)
				require.GreaterOrEqual(t, cur, prev)

				prev = cur
			}
		}()
	}

	for i := 0; i < 1000; i++ {
		src.Step(time.Microsecond)
	}

	wg.Wait()
}
