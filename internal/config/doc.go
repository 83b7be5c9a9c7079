// Package config defines the simulation driver settings and provides
// helpers to load, validate and save them in YAML format.
//
// The Config type controls the handle capacity, the shape of the simulated
// control loops and the time-stepping cadence.
package config
