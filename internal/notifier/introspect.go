package notifier

import (
	"strconv"

	"github.com/oshokin/sim-notifier/internal/clock"
	"github.com/oshokin/sim-notifier/internal/handle"
)

// AlarmInfo is a point-in-time snapshot of one live alarm.
type AlarmInfo struct {
	// Handle identifies the alarm.
	Handle handle.Handle
	// Name is the assigned name, or "Notifier<index>" when unset.
	Name string
	// Timeout is the trigger time; meaningful only while Running.
	Timeout clock.Micros
	// Running reports whether the alarm is armed.
	Running bool
}

// NextTimeout returns the earliest trigger time across all armed alarms, or
// clock.Never when none is armed. Simulation drivers use it to decide how
// far the clock may step.
func (h *Hub) NextTimeout() clock.Micros {
	timeout := clock.Never

	h.table.ForEach(func(_ handle.Handle, n *notifier) {
		n.mu.Lock()
		defer n.mu.Unlock()

		if n.active && n.running && timeout > n.waitTime {
			timeout = n.waitTime
		}
	})

	return timeout
}

// Count returns the number of live (active) alarms.
func (h *Hub) Count() int {
	count := 0

	h.table.ForEach(func(_ handle.Handle, n *notifier) {
		n.mu.Lock()
		defer n.mu.Unlock()

		if n.active {
			count++
		}
	})

	return count
}

// Info snapshots up to max live alarms and returns them along with the total
// number of live alarms, which may exceed max. Each entry is locked
// independently, so the snapshot is not atomic across alarms; it is meant
// for observation and debugging, not correctness.
func (h *Hub) Info(max int) ([]AlarmInfo, int) {
	var (
		infos []AlarmInfo
		total int
	)

	h.table.ForEach(func(hd handle.Handle, n *notifier) {
		n.mu.Lock()
		defer n.mu.Unlock()

		if !n.active {
			return
		}

		if total < max {
			name := n.name
			if name == "" {
				name = "Notifier" + strconv.Itoa(hd.Index())
			}

			infos = append(infos, AlarmInfo{
				Handle:  hd,
				Name:    truncateName(name),
				Timeout: n.waitTime,
				Running: n.running,
			})
		}

		total++
	})

	return infos, total
}
