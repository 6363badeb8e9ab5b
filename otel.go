// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dispatch

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const otelScopeName = "rivaas.dev/dispatch"

// OTelRecorder is an ObservabilityRecorder backed by OpenTelemetry: one
// span per dispatch plus a duration histogram and outcome counters. It
// uses whatever TracerProvider and MeterProvider are given, so tests can
// pass SDK in-memory providers and production can pass exporters; the
// engine never imports the SDK itself.
type OTelRecorder struct {
	tracer   trace.Tracer
	duration metric.Float64Histogram
	requests metric.Int64Counter
	guards   metric.Int64Counter
}

// NewOTelRecorder builds a recorder from the given providers. Nil
// providers fall back to the global otel providers.
func NewOTelRecorder(tp trace.TracerProvider, mp metric.MeterProvider) (*OTelRecorder, error) {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if mp == nil {
		mp = otel.GetMeterProvider()
	}

	meter := mp.Meter(otelScopeName)
	duration, err := meter.Float64Histogram("dispatch.duration",
		metric.WithUnit("ms"),
		metric.WithDescription("Time spent dispatching one request."))
	if err != nil {
		return nil, err
	}
	requests, err := meter.Int64Counter("dispatch.requests",
		metric.WithDescription("Dispatched requests by route and status."))
	if err != nil {
		return nil, err
	}
	guards, err := meter.Int64Counter("dispatch.guard_outcomes",
		metric.WithDescription("Guard evaluations by route, guard, and outcome."))
	if err != nil {
		return nil, err
	}

	return &OTelRecorder{
		tracer:   tp.Tracer(otelScopeName),
		duration: duration,
		requests: requests,
		guards:   guards,
	}, nil
}

// StartRequest opens the dispatch span.
func (r *OTelRecorder) StartRequest(ctx context.Context, req *Request) context.Context {
	ctx, _ = r.tracer.Start(ctx, "dispatch",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.path", req.Path),
		))
	return ctx
}

// EndRequest closes the span and records metrics.
func (r *OTelRecorder) EndRequest(ctx context.Context, req *Request, route string, status int, elapsed time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("http.request.method", req.Method),
		attribute.String("dispatch.route", route),
		attribute.Int("http.response.status_code", status),
	}
	r.duration.Record(ctx, float64(elapsed)/float64(time.Millisecond), metric.WithAttributes(attrs...))
	r.requests.Add(ctx, 1, metric.WithAttributes(attrs...))

	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attrs...)
	span.End()
}

// RecordGuard implements GuardObserver.
func (r *OTelRecorder) RecordGuard(ctx context.Context, route, guard, outcome string) {
	r.guards.Add(ctx, 1, metric.WithAttributes(
		attribute.String("dispatch.route", route),
		attribute.String("dispatch.guard", guard),
		attribute.String("dispatch.outcome", outcome),
	))
}

var (
	_ ObservabilityRecorder = (*OTelRecorder)(nil)
	_ GuardObserver         = (*OTelRecorder)(nil)
)
