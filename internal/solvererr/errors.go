// Package solvererr defines the sentinel error taxonomy shared by every
// layer of the solver, from distance-file parsing up through the
// distributed coordinator.
package solvererr

import "errors"

// Usage and input errors.
var (
	// ErrUsage is returned when the command line does not carry exactly
	// one positional argument.
	ErrUsage = errors.New("usage error")

	// ErrMalformedMatrix is returned when the distance file's integer
	// count matches neither the full-matrix nor the lower-triangle form,
	// or when N is outside [1, 18].
	ErrMalformedMatrix = errors.New("malformed distance matrix")
)

// Search errors.
var (
	// ErrResourceExhausted is returned when a DFS stack cannot grow any
	// further. Fatal to the whole computation.
	ErrResourceExhausted = errors.New("search stack exhausted")
)

// Result errors.
var (
	// ErrNoSolution is returned when the search completed without ever
	// discovering a complete tour.
	ErrNoSolution = errors.New("no solution found")
)
