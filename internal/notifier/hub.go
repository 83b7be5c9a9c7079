package notifier

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/oshokin/sim-notifier/internal/clock"
	"github.com/oshokin/sim-notifier/internal/handle"
)

const (
	// longWait is the sleep used while an alarm is unarmed or notifiers are
	// paused. The waiter relies on a broadcast to wake earlier.
	longWait = 1000 * time.Second

	// barrierPoll bounds one WakeupWait retry cycle. The timeout guards
	// against entries freed between the snapshot and the re-check, so the
	// barrier always terminates.
	barrierPoll = time.Second
)

// Stopped is returned by Wait when the alarm was stopped or the handle did
// not resolve.
const Stopped clock.Micros = 0

// Hub owns the alarm registry and the process-wide coordination state.
// Create one per process (or per test) with NewHub and tear it down with
// Close; there is no global instance.
type Hub struct {
	// src is the shared time source all deadline comparisons use.
	src clock.Source
	// table maps opaque handles to shared notifier state.
	table *handle.Table[notifier]

	// waiterMu serializes the handshake between a new wait attempt's
	// generation increment and the barrier's snapshot. It is never held
	// while blocking and never together with more than one notifier mutex.
	waiterMu sync.Mutex
	// waiterCond announces "a new wait generation has begun" to the barrier.
	waiterCond *sync.Cond

	// paused suppresses deadline-based sleeps; already-due alarms still fire.
	paused atomic.Bool
}

// NewHub creates a hub over the given time source with a fixed handle
// capacity.
func NewHub(src clock.Source, capacity int) *Hub {
	h := &Hub{
		src:   src,
		table: handle.NewTable[notifier](handle.KindNotifier, capacity),
	}
	h.waiterCond = sync.NewCond(&h.waiterMu)

	return h
}

// Initialize allocates a new unarmed alarm and returns its handle.
// It returns handle.ErrExhausted when the registry is full.
func (h *Hub) Initialize() (handle.Handle, error) {
	return h.table.Allocate(newNotifier())
}

// SetName assigns a display name to the alarm. Names longer than MaxNameLen
// are truncated. Unknown handles are a no-op.
func (h *Hub) SetName(hd handle.Handle, name string) {
	n := h.table.Get(hd)
	if n == nil {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.name = truncateName(name)
}

// UpdateAlarm arms the alarm to fire at triggerTime. Passing clock.Never
// disarms it. Any current waiter is woken so it recomputes its sleep against
// the new deadline. Unknown handles are a no-op.
func (h *Hub) UpdateAlarm(hd handle.Handle, triggerTime clock.Micros) {
	n := h.table.Get(hd)
	if n == nil {
		return
	}

	n.mu.Lock()
	n.waitTime = triggerTime
	n.running = triggerTime != clock.Never
	n.mu.Unlock()

	n.cond.Broadcast()
}

// CancelAlarm disarms the alarm without deactivating it. A waiter blocked on
// the handle keeps waiting until re-armed or stopped. Unknown handles are a
// no-op.
func (h *Hub) CancelAlarm(hd handle.Handle) {
	n := h.table.Get(hd)
	if n == nil {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.running = false
}

// Stop deactivates the alarm permanently and releases any blocked waiter,
// which then returns Stopped. Unknown handles are a no-op.
func (h *Hub) Stop(hd handle.Handle) {
	n := h.table.Get(hd)
	if n == nil {
		return
	}

	deactivate(n)
}

// Clean removes the alarm from the registry. The shared state survives until
// any concurrently blocked waiter finishes its loop; in case Stop was
// skipped, Clean also deactivates the alarm and wakes the waiter. Unknown
// handles are a no-op.
func (h *Hub) Clean(hd handle.Handle) {
	n := h.table.Free(hd)
	if n == nil {
		return
	}

	deactivate(n)
}

func deactivate(n *notifier) {
	n.mu.Lock()
	n.active = false
	n.running = false
	n.mu.Unlock()

	n.cond.Broadcast()
}

// Wait blocks until the alarm fires, returning the current time from the
// shared source, or until the alarm is stopped, returning Stopped. Firing
// disarms the alarm, so a second Wait blocks until the handle is re-armed.
//
// The deadline is re-read from the time source on every wakeup instead of
// trusting the original timeout, so coarse sleep resolution and mid-wait
// UpdateAlarm calls do not accumulate drift. An already-due alarm fires even
// while the hub is paused; pause only stretches future sleeps.
func (h *Hub) Wait(hd handle.Handle) clock.Micros {
	n := h.table.Get(hd)
	if n == nil {
		return Stopped
	}

	// The waiter lock is taken strictly before the instance lock and
	// released before blocking, so the barrier's snapshot and this wait's
	// generation increment cannot interleave inconsistently.
	h.waiterMu.Lock()
	n.mu.Lock()
	n.count++
	h.waiterMu.Unlock()
	h.waiterCond.Broadcast()

	defer n.mu.Unlock()

	for n.active {
		cur, err := h.src.Now()
		if err != nil {
			return Stopped
		}

		if n.running && cur >= n.waitTime {
			n.running = false

			return cur
		}

		var d time.Duration
		if !n.running || h.paused.Load() {
			d = longWait
		} else {
			d = n.waitTime.Sub(cur)
		}

		n.waitFor(d)
	}

	return Stopped
}

// Pause makes every not-yet-due waiter sleep indefinitely instead of
// sleeping toward its deadline. It wakes nobody by itself: alarms that are
// already due keep firing, and a subsequent Wakeup or Resume re-evaluates
// the rest.
func (h *Hub) Pause() {
	h.paused.Store(true)
}

// Resume clears the pause flag and wakes every waiter so it re-checks its
// deadline against current time.
func (h *Hub) Resume() {
	h.paused.Store(false)
	h.Wakeup()
}

// Wakeup broadcasts to every live alarm, forcing all blocked waiters to
// re-evaluate their deadlines and the pause state.
func (h *Hub) Wakeup() {
	h.table.ForEach(func(_ handle.Handle, n *notifier) {
		n.cond.Broadcast()
	})
}

// WakeupWait is the time-advance barrier. A simulated-time driver calls it
// after stepping the clock; it returns once every alarm that should observe
// the new time has done so, tolerating alarms that are concurrently updated,
// stopped or cleaned while it polls.
//
// An alarm "should observe" the step if it is armed and either is due at the
// new time or has never begun a wait attempt. Progress is detected through
// the wait-generation counter, not wall-clock comparison: once a pending
// entry's counter moves past the snapshot value, its waiter has started a
// fresh attempt and therefore has already seen the step.
func (h *Hub) WakeupWait() {
	h.waiterMu.Lock()
	defer h.waiterMu.Unlock()

	cur, err := h.src.Now()
	if err != nil {
		return
	}

	type pending struct {
		hd    handle.Handle
		count uint64
	}

	var waiters []pending

	h.table.ForEach(func(hd handle.Handle, n *notifier) {
		n.mu.Lock()
		defer n.mu.Unlock()

		// Only wait for alarms that are going to wake up: either the
		// trigger time has passed or the alarm has never been waited on.
		if n.running && (n.count == 0 || cur >= n.waitTime) {
			waiters = append(waiters, pending{hd, n.count})
			n.cond.Broadcast()
		}
	})

	for {
		count, end := 0, len(waiters)

		for count < end {
			it := waiters[count]

			if n := h.table.Get(it.hd); n != nil {
				n.mu.Lock()
				if n.active && n.count == it.count {
					// Still pending; nudge it again.
					n.cond.Broadcast()
					n.mu.Unlock()
					count++

					continue
				}
				n.mu.Unlock()
			}

			// Freed, stopped or already progressed; drop from the set.
			waiters[count], waiters[end-1] = waiters[end-1], waiters[count]
			end--
		}

		if count == 0 {
			return
		}

		waiters = waiters[:count]

		// Bounded wait: a handle freed between snapshot and re-check must
		// not leave the barrier blocked forever.
		h.waiterWaitFor(barrierPoll)
	}
}

// waiterWaitFor blocks on the global waiter condition for at most d. The
// caller must hold waiterMu. Same missed-wakeup ordering as notifier.waitFor.
func (h *Hub) waiterWaitFor(d time.Duration) {
	t := time.AfterFunc(d, func() {
		h.waiterMu.Lock()
		//nolint:staticcheck // Empty critical section orders the broadcast after cond.Wait parks.
		h.waiterMu.Unlock()
		h.waiterCond.Broadcast()
	})
	defer t.Stop()

	h.waiterCond.Wait()
}

// Close deactivates every remaining alarm and wakes all blocked waiters,
// including any goroutine blocked in the barrier, so nothing stays parked
// past teardown. Handles stop firing but remain resolvable until cleaned.
func (h *Hub) Close() {
	h.table.ForEach(func(_ handle.Handle, n *notifier) {
		n.mu.Lock()
		n.active = false
		n.running = false
		n.mu.Unlock()

		n.cond.Broadcast()
	})

	h.waiterCond.Broadcast()
}
