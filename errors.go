// errors.go: structured errors for construction-time failures and the
// fatal invariant-violation abort path (§7)
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package hydra

import (
	goerrors "errors"

	"github.com/agilira/go-errors"
)

// Error codes for Hydra map operations.
const (
	// ErrCodeInvariantViolation marks a violation of one of §3's
	// invariants (e.g. a resizer-election CAS failing when resizerCount
	// elected a unique allocator, or copy_done overflowing its table's
	// length). Per §7 these are fatal: the process aborts rather than
	// returning a recoverable error.
	ErrCodeInvariantViolation errors.ErrorCode = "HYDRA_INVARIANT_VIOLATION"

	// ErrCodeInvalidCapacity marks a construction-time argument error.
	ErrCodeInvalidCapacity errors.ErrorCode = "HYDRA_INVALID_CAPACITY"
)

const (
	msgInvariantViolation = "hydra: internal invariant violated"
	msgInvalidCapacity    = "hydra: capacity hint must be >= 0"
)

// newInvalidCapacityError builds the structured error WithCapacity
// returns for a negative hint, grounded on the teacher's
// NewErrInvalidMaxSize construction-time error shape.
func newInvalidCapacityError(hint int) error {
	return errors.NewWithContext(ErrCodeInvalidCapacity, msgInvalidCapacity, map[string]interface{}{
		"provided_hint": hint,
		"valid_range":   "hint >= 0",
	})
}

// newInvariantError builds the structured error carried by a fatal
// invariant-violation panic. Building a real error (rather than a bare
// string) keeps the abort diagnosable: the context map records exactly
// which counters/lengths were observed at the point of violation.
func newInvariantError(operation string, context map[string]interface{}) error {
	if context == nil {
		context = map[string]interface{}{}
	}
	context["operation"] = operation
	return errors.NewWithContext(ErrCodeInvariantViolation, msgInvariantViolation, context).
		WithSeverity("fatal")
}

// IsInvariantViolation reports whether err was produced by a fatal
// invariant-violation abort. A deferred recover() sees the panic value
// handed to it by fatalInvariant, which is exactly such an error.
func IsInvariantViolation(err error) bool {
	return errors.HasCode(err, ErrCodeInvariantViolation)
}

// IsInvalidCapacity reports whether err was returned by WithCapacity
// for a negative capacity hint.
func IsInvalidCapacity(err error) bool {
	return errors.HasCode(err, ErrCodeInvalidCapacity)
}

// GetErrorContext extracts the structured context recorded on an error
// built by this package, or nil if err did not come from here.
func GetErrorContext(err error) map[string]interface{} {
	if err == nil {
		return nil
	}
	var hydraErr *errors.Error
	if goerrors.As(err, &hydraErr) {
		return hydraErr.Context
	}
	return nil
}

// fatalInvariant logs and returns the error for a §7 fatal abort. Callers
// panic with the returned value: invariant violations are programmer
// errors in the CAS state machine, not conditions a caller can recover
// from by retrying.
func (m *Map[K, V]) fatalInvariant(msg string, kv ...interface{}) error {
	context := make(map[string]interface{}, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		context[key] = kv[i+1]
	}
	m.logger.Error(msg, kv...)
	return newInvariantError(msg, context)
}
