// collector.go: OpenTelemetry-backed hydra.MetricsCollector
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package otel

import (
	"context"
	"errors"

	"github.com/agilira/hydra"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetricsCollector implements hydra.MetricsCollector using
// OpenTelemetry. Safe for concurrent use; the underlying OTEL
// instruments are themselves lock-free.
type OTelMetricsCollector struct {
	putLatency    metric.Int64Histogram
	getLatency    metric.Int64Histogram
	deleteLatency metric.Int64Histogram
	hits          metric.Int64Counter
	misses        metric.Int64Counter
	resizes       metric.Int64Counter
	promotions    metric.Int64Counter
	copiedSlots   metric.Int64Counter
}

// Options configures an OTelMetricsCollector.
type Options struct {
	// MeterName is the name of the OpenTelemetry meter. Default:
	// "github.com/agilira/hydra".
	MeterName string
}

// Option is a functional option for OTelMetricsCollector construction.
type Option func(*Options)

// WithMeterName sets a custom meter name, useful for distinguishing
// metrics from multiple Map instances.
func WithMeterName(name string) Option {
	return func(o *Options) { o.MeterName = name }
}

// NewOTelMetricsCollector creates a metrics collector backed by the
// given OpenTelemetry MeterProvider, which must not be nil.
func NewOTelMetricsCollector(provider metric.MeterProvider, opts ...Option) (*OTelMetricsCollector, error) {
	if provider == nil {
		return nil, errors.New("meter provider cannot be nil")
	}

	options := Options{MeterName: "github.com/agilira/hydra"}
	for _, opt := range opts {
		opt(&options)
	}
	meter := provider.Meter(options.MeterName)

	c := &OTelMetricsCollector{}
	var err error

	if c.putLatency, err = meter.Int64Histogram(
		"hydra_put_latency_ns",
		metric.WithDescription("Latency of Put operations in nanoseconds"),
		metric.WithUnit("ns"),
	); err != nil {
		return nil, err
	}
	if c.getLatency, err = meter.Int64Histogram(
		"hydra_get_latency_ns",
		metric.WithDescription("Latency of Get operations in nanoseconds"),
		metric.WithUnit("ns"),
	); err != nil {
		return nil, err
	}
	if c.deleteLatency, err = meter.Int64Histogram(
		"hydra_delete_latency_ns",
		metric.WithDescription("Latency of Delete operations in nanoseconds"),
		metric.WithUnit("ns"),
	); err != nil {
		return nil, err
	}
	if c.hits, err = meter.Int64Counter(
		"hydra_get_hits_total",
		metric.WithDescription("Total number of Get hits"),
	); err != nil {
		return nil, err
	}
	if c.misses, err = meter.Int64Counter(
		"hydra_get_misses_total",
		metric.WithDescription("Total number of Get misses"),
	); err != nil {
		return nil, err
	}
	if c.resizes, err = meter.Int64Counter(
		"hydra_resizes_total",
		metric.WithDescription("Total number of generations allocated"),
	); err != nil {
		return nil, err
	}
	if c.promotions, err = meter.Int64Counter(
		"hydra_promotions_total",
		metric.WithDescription("Total number of generations fully migrated and promoted"),
	); err != nil {
		return nil, err
	}
	if c.copiedSlots, err = meter.Int64Counter(
		"hydra_copy_chunk_slots_total",
		metric.WithDescription("Total number of slots migrated across all help_copy chunks"),
	); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *OTelMetricsCollector) RecordPut(latencyNs int64, hadPrior bool) {
	c.putLatency.Record(context.Background(), latencyNs)
}

func (c *OTelMetricsCollector) RecordGet(latencyNs int64, hit bool) {
	ctx := context.Background()
	c.getLatency.Record(ctx, latencyNs)
	if hit {
		c.hits.Add(ctx, 1)
	} else {
		c.misses.Add(ctx, 1)
	}
}

func (c *OTelMetricsCollector) RecordDelete(latencyNs int64, removed bool) {
	c.deleteLatency.Record(context.Background(), latencyNs)
}

func (c *OTelMetricsCollector) RecordResize(oldLength, newLength int) {
	c.resizes.Add(context.Background(), 1)
}

func (c *OTelMetricsCollector) RecordPromotion(oldLength, newLength int) {
	c.promotions.Add(context.Background(), 1)
}

func (c *OTelMetricsCollector) RecordCopyChunk(slotsCopied int) {
	c.copiedSlots.Add(context.Background(), int64(slotsCopied))
}

var _ hydra.MetricsCollector = (*OTelMetricsCollector)(nil)
