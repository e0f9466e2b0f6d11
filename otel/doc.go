// Package otel provides OpenTelemetry integration for Hydra map metrics.
//
// # Overview
//
// This package implements hydra.MetricsCollector using OpenTelemetry,
// exposing latency histograms for Put/Get/Delete and counters for
// resize/promotion/copy-chunk events, with automatic percentile
// calculation (p50, p95, p99) and multi-backend export (Prometheus,
// Jaeger, DataDog, or any other OTEL-compatible backend).
//
// This package is a separate module so the hydra core stays free of
// OpenTelemetry dependencies; applications that don't need metrics
// collection don't pay for them.
//
// # Quick Start
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
//	defer provider.Shutdown(context.Background())
//
//	collector, err := hydraotel.NewOTelMetricsCollector(provider)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	m := hydra.NewMap[string, int](hydra.WithMetricsCollector[string, int](collector))
//
// # Metrics Exposed
//
// Histograms (with automatic percentiles):
//   - hydra_put_latency_ns
//   - hydra_get_latency_ns
//   - hydra_delete_latency_ns
//
// Counters:
//   - hydra_get_hits_total / hydra_get_misses_total
//   - hydra_resizes_total / hydra_promotions_total
//   - hydra_copy_chunk_slots_total
//
// # Prometheus Queries
//
// P95 Get latency:
//
//	histogram_quantile(0.95, rate(hydra_get_latency_ns_bucket[5m]))
//
// Hit ratio:
//
//	rate(hydra_get_hits_total[5m]) /
//	(rate(hydra_get_hits_total[5m]) + rate(hydra_get_misses_total[5m]))
//
// Resize rate:
//
//	rate(hydra_resizes_total[5m])
//
// # Thread Safety
//
// All methods are thread-safe and use lock-free OTEL instruments.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package otel
