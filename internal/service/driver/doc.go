// Package driver runs the simulated-time demonstration of the notifier
// primitive.
//
// It spawns a set of periodic control loops, each owning one alarm handle
// and blocking on it, then steps a simulated clock forward tick by tick.
// After every step it runs the time-advance barrier so no tick is taken
// before every due alarm has observed the previous one. The driver is also
// the reference for how a consumer is expected to use pause/resume and the
// introspection queries.
package driver
