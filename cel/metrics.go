// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package cel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/stacklok/toolhive-cel/types"
)

const meterName = "github.com/stacklok/toolhive-cel/cel"

// engineMetrics holds the instruments an Engine records to.
type engineMetrics struct {
	compiles      metric.Int64Counter
	compileErrors metric.Int64Counter
	evals         metric.Int64Counter
	evalErrors    metric.Int64Counter
	evalLatency   metric.Float64Histogram
}

// newEngineMetrics creates the engine instruments on mp.
func newEngineMetrics(mp metric.MeterProvider) (*engineMetrics, error) {
	meter := mp.Meter(meterName)

	compiles, err := meter.Int64Counter("cel.compile.count",
		metric.WithDescription("Number of expressions compiled"),
	)
	if err != nil {
		return nil, err
	}

	compileErrors, err := meter.Int64Counter("cel.compile.errors",
		metric.WithDescription("Number of expressions that failed to compile"),
	)
	if err != nil {
		return nil, err
	}

	evals, err := meter.Int64Counter("cel.eval.count",
		metric.WithDescription("Number of expression evaluations"),
	)
	if err != nil {
		return nil, err
	}

	evalErrors, err := meter.Int64Counter("cel.eval.errors",
		metric.WithDescription("Number of evaluations that produced an error"),
	)
	if err != nil {
		return nil, err
	}

	evalLatency, err := meter.Float64Histogram("cel.eval.duration",
		metric.WithDescription("Expression evaluation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &engineMetrics{
		compiles:      compiles,
		compileErrors: compileErrors,
		evals:         evals,
		evalErrors:    evalErrors,
		evalLatency:   evalLatency,
	}, nil
}

// noopMetrics returns instruments that discard every measurement.
func noopMetrics() *engineMetrics {
	return &engineMetrics{
		compiles:      noop.Int64Counter{},
		compileErrors: noop.Int64Counter{},
		evals:         noop.Int64Counter{},
		evalErrors:    noop.Int64Counter{},
		evalLatency:   noop.Float64Histogram{},
	}
}

func (m *engineMetrics) recordCompile(ctx context.Context, stage string, err error) {
	m.compiles.Add(ctx, 1)
	if err != nil {
		m.compileErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
	}
}

func (m *engineMetrics) recordEval(ctx context.Context, duration time.Duration, result types.Val) {
	m.evals.Add(ctx, 1)
	m.evalLatency.Record(ctx, float64(duration.Microseconds())/1000)
	switch r := result.(type) {
	case *types.Err:
		m.evalErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(r.Kind))))
	case *types.Unknown:
		m.evalErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", "unknown")))
	}
}
