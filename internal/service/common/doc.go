// Package common holds helpers shared by services.
//
// It provides process inspection used to detect a concurrently running
// driver instance before starting a simulation.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
