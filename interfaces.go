// interfaces.go: ambient logging and time-source interfaces
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package hydra

import "github.com/agilira/go-timecache"

// Logger defines a minimal logging interface with zero overhead when
// unused. Implementations should use structured logging and be
// allocation-free on the hot path.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs.
	Debug(msg string, keyvals ...interface{})

	// Info logs an info message with optional key-value pairs.
	Info(msg string, keyvals ...interface{})

	// Warn logs a warning message with optional key-value pairs.
	Warn(msg string, keyvals ...interface{})

	// Error logs an error message with optional key-value pairs.
	Error(msg string, keyvals ...interface{})
}

// NoOpLogger is a logger that does nothing. Used as the default so the
// hot path never needs a nil check.
type NoOpLogger struct{}

func (NoOpLogger) Debug(msg string, keyvals ...interface{}) {}
func (NoOpLogger) Info(msg string, keyvals ...interface{})  {}
func (NoOpLogger) Warn(msg string, keyvals ...interface{})  {}
func (NoOpLogger) Error(msg string, keyvals ...interface{}) {}

// TimeProvider supplies the current time for the resize decision's
// tombstone-saturation heuristic (§4.5 "last resize within one second").
// Injectable so tests can control the clock without sleeping.
type TimeProvider interface {
	// Now returns the current time in nanoseconds since epoch. Must be
	// fast and allocation-free: it is read on every resize decision.
	Now() int64
}

// systemTimeProvider is the default TimeProvider, backed by
// go-timecache's coarse cached clock rather than a raw time.Now() call
// on every resize check.
type systemTimeProvider struct{}

func (systemTimeProvider) Now() int64 {
	return timecache.CachedTimeNano()
}
