// Package clock provides the monotonic microsecond time sources consulted
// for every alarm deadline comparison.
//
// Source is the shared interface; System reads real monotonic time, while
// Simulated is stepped forward explicitly by a simulation driver. The
// Never sentinel marks a disarmed trigger time.
package clock
