package notifier

import (
	"sync"
	"time"

	"github.com/oshokin/sim-notifier/internal/clock"
)

// MaxNameLen bounds stored alarm names. Longer names are truncated, matching
// the fixed-size name field of the introspection records.
const MaxNameLen = 64

// notifier is the state behind one alarm handle. Every field is guarded by
// mu; cond shares the same mutex. The struct is shared between the registry
// and any goroutine currently blocked in Wait, so it stays alive after the
// registry unlinks it.
type notifier struct {
	mu   sync.Mutex
	cond *sync.Cond

	// name is the display name, empty until SetName.
	name string
	// waitTime is the absolute trigger time; only meaningful while running.
	waitTime clock.Micros
	// active is true until the alarm is stopped or cleaned, then never again.
	active bool
	// running is true while an alarm is armed.
	running bool
	// count is the wait-attempt generation stamp. It only ever increases.
	count uint64
}

func newNotifier() *notifier {
	n := &notifier{active: true}
	n.cond = sync.NewCond(&n.mu)

	return n
}

// waitFor blocks on the notifier's condition for at most d. The caller must
// hold n.mu. The timer callback takes the mutex before broadcasting, which
// guarantees the waiter is parked on the condition before the wakeup can be
// issued, so the timeout cannot be lost.
func (n *notifier) waitFor(d time.Duration) {
	t := time.AfterFunc(d, func() {
		n.mu.Lock()
		//nolint:staticcheck // Empty critical section orders the broadcast after cond.Wait parks.
		n.mu.Unlock()
		n.cond.Broadcast()
	})
	defer t.Stop()

	n.cond.Wait()
}

// truncateName clips a name to MaxNameLen bytes.
func truncateName(s string) string {
	if len(s) > MaxNameLen {
		return s[:MaxNameLen]
	}

	return s
}
