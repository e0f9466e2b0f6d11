// metrics.go: operation metrics collection interface (nil-safe, zero
// overhead when unset)
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package hydra

// MetricsCollector receives notifications for every externally visible
// operation and every internal resize/copy event. Implementations must
// be safe for concurrent use and should be allocation-free on the hot
// path; see hydra/otel for an OpenTelemetry-backed implementation.
type MetricsCollector interface {
	// RecordPut is called after every Put, with its latency in
	// nanoseconds and whether the key was already present.
	RecordPut(latencyNs int64, hadPrior bool)

	// RecordGet is called after every Get, with its latency in
	// nanoseconds and whether the key was found.
	RecordGet(latencyNs int64, hit bool)

	// RecordDelete is called after every Delete, with its latency in
	// nanoseconds and whether a live entry was actually removed.
	RecordDelete(latencyNs int64, removed bool)

	// RecordResize is called once per newly allocated generation, by
	// the thread that won the resizer election (§4.5).
	RecordResize(oldLength, newLength int)

	// RecordPromotion is called once a generation's migration
	// completes and Map.current is advanced to its successor (§4.7).
	RecordPromotion(oldLength, newLength int)

	// RecordCopyChunk is called after a help_copy_impl iteration that
	// actually migrated at least one slot, with the count of slots
	// migrated in that chunk (§4.7 "work chunking").
	RecordCopyChunk(slotsCopied int)
}

// NoOpMetricsCollector discards every event. Used as the default so the
// hot path never needs a nil check.
type NoOpMetricsCollector struct{}

func (NoOpMetricsCollector) RecordPut(latencyNs int64, hadPrior bool)   {}
func (NoOpMetricsCollector) RecordGet(latencyNs int64, hit bool)        {}
func (NoOpMetricsCollector) RecordDelete(latencyNs int64, removed bool) {}
func (NoOpMetricsCollector) RecordResize(oldLength, newLength int)      {}
func (NoOpMetricsCollector) RecordPromotion(oldLength, newLength int)   {}
func (NoOpMetricsCollector) RecordCopyChunk(slotsCopied int)            {}
