// Package hydra provides a lock-free, linearly-probed, incrementally
// resizable concurrent hash map, safe for use by multiple goroutines
// without external synchronization.
//
// # Overview
//
// Hydra is a from-scratch reimplementation of Cliff Click's
// non-blocking hash map in idiomatic Go:
//   - Lock-Free: every mutation is a single compare-and-swap; no
//     goroutine ever holds a lock that another goroutine waits on.
//   - Resizable: the table grows by cooperative, incremental migration
//     to a new generation instead of a stop-the-world rehash; readers
//     and writers keep making progress throughout.
//   - Type-Safe Generics: Map[K comparable, V comparable].
//   - Structured Errors: fatal invariant violations carry rich context
//     via go-errors rather than a bare panic string.
//   - Observability: MetricsCollector interface, with an
//     OpenTelemetry-backed implementation in hydra/otel (optional,
//     separate module).
//
// # Quick Start
//
//	import "github.com/agilira/hydra"
//
//	m, err := hydra.WithCapacity[string, int](10_000)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	m.Put("requests", 1)
//	if v, found := m.Get("requests"); found {
//	    fmt.Println(v)
//	}
//	m.Delete("requests")
//
// # Concurrency Model
//
// Every Map method is safe to call concurrently from any number of
// goroutines:
//   - Reads: atomic loads, following published successors on a frozen
//     slot.
//   - Writes: a single CAS per attempt, retried on contention.
//   - Resize: exactly one goroutine allocates each new generation
//     (elected via an atomic counter); every other goroutine either
//     helps migrate slots or makes progress on its own operation in
//     the meantime.
//
// The only wait in the whole implementation is a thread that loses a
// resizer election, which spins with bounded backoff for the winner to
// publish the new generation. Every other thread is always making
// lock-free progress; Put, Get, and Delete never block on another
// goroutine's Put, Get, or Delete.
//
// # Resizing
//
// A resize is decided when an insert runs past the reprobe limit (or
// meets a tombstone in a full table). The new generation doubles the
// length when the live-entry count is at least a quarter of it, and
// quadruples it at half or more. Below a quarter it keeps the same
// length, which drops the tombstones left by Put/Delete churn; the
// exception is a table whose claimed slots are at least twice its live
// count and whose previous resize was under a second ago, which doubles
// instead. Migration proceeds
// incrementally: both readers and writers passing through a slot that
// is still in the old generation help move it to the new one, so no
// single caller observes the pause of a full-table rehash. See
// Map.Generations for a diagnostic snapshot of every generation
// currently in flight.
//
// # Reclamation
//
// Once a generation is fully migrated and Map.current is advanced past
// it, nothing in Hydra keeps a reference to the retired generation.
// Go's garbage collector reclaims it once the last goroutine still
// reading through it finishes -- there is no manual epoch-based
// reclamation scheme to tune, unlike a hazard-pointer or RCU-style
// design.
//
// # Observability
//
//	import (
//	    "github.com/agilira/hydra"
//	    hydraotel "github.com/agilira/hydra/otel"
//	    "go.opentelemetry.io/otel/exporters/prometheus"
//	    "go.opentelemetry.io/otel/sdk/metric"
//	)
//
//	exporter, _ := prometheus.New()
//	provider := metric.NewMeterProvider(metric.WithReader(exporter))
//	collector, _ := hydraotel.NewOTelMetricsCollector(provider)
//
//	m := hydra.NewMap[string, int](hydra.WithMetricsCollector[string, int](collector))
//
// Metrics exposed (via OpenTelemetry):
//   - hydra_put_latency_ns / hydra_get_latency_ns / hydra_delete_latency_ns
//   - hydra_get_hits_total / hydra_get_misses_total
//   - hydra_resizes_total / hydra_promotions_total
//   - hydra_copy_chunk_slots_total
//
// The core hydra package has zero OpenTelemetry dependencies; hydra/otel
// is a separate module.
//
// # Error Handling
//
// Hydra uses structured errors (via go-errors) for two kinds of
// failure. Construction-time argument errors, such as WithCapacity
// rejecting a negative hint (ErrCodeInvalidCapacity), are returned
// normally. The fatal invariant-violation path of §7 indicates a
// violated internal invariant in the CAS state machine, not a
// condition a caller can recover from by retrying, so it panics rather
// than returns. Recover and inspect with IsInvariantViolation and
// GetErrorContext.
//
// # Thread Safety
//
//	m := hydra.NewMap[string, int]()
//
//	go func() { m.Put("key1", 1) }()
//	go func() { m.Get("key1") }()
//	go func() { m.Delete("key1") }()
//	go func() { _ = m.Generations() }()
//
// # Examples
//
// The package tests and the benchmarks directory show the API in use;
// the repository ships no separate example programs.
//
// # License
//
// MPL-2.0, as stated by the SPDX-License-Identifier line in each
// source file.
package hydra

// Version of the Hydra map library.
const Version = "v0.1.0-dev"
