// Package notifier implements the per-handle single-shot alarm primitive
// used for timed waits and periodic execution.
//
// Each handle owns one alarm; its owning goroutine blocks in Hub.Wait until
// the alarm's trigger time is reached on the shared time source or the
// alarm is stopped. The Hub also carries the process-wide coordination:
// pausing and resuming all alarms, waking every blocked waiter, and the
// WakeupWait barrier a simulated-time driver uses to make sure every due
// alarm has observed a time step before the clock advances again.
//
// The primitive works identically over a real monotonic clock and a
// simulated clock stepped by a driver; see package clock.
package notifier
