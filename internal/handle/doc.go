// Package handle implements the capacity-bounded registry that maps opaque
// handles to shared per-handle objects.
//
// A Handle encodes a type tag, a slot generation and a slot index, but
// callers must treat it as opaque: the only way to establish validity is a
// Table lookup, which checks the generation so handles to freed slots miss
// cleanly instead of resolving to a recycled object.
package handle
