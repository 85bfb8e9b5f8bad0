// Package testutil provides testing utilities for gantry.
//
// This package contains mock errors and test helpers used across test files.
// It should only be imported by test files (*_test.go).
package testutil

import "errors"

// Mock errors for testing purposes.
// These errors are used to simulate various failure scenarios in tests.
var (
	// ErrMockLookPath indicates a mock PATH lookup failure (used in tests).
	ErrMockLookPath = errors.New("executable not found in PATH")

	// ErrMockExec indicates a mock subprocess failure (used in tests).
	ErrMockExec = errors.New("exec failed")

	// ErrMockExit indicates a mock non-zero exit (used in tests).
	ErrMockExit = errors.New("exit status 1")

	// ErrMockIO indicates a mock filesystem error (used in tests).
	ErrMockIO = errors.New("i/o error")
)
