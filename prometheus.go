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
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder is an ObservabilityRecorder backed by Prometheus
// collectors, for deployments that scrape rather than push. It registers
// a request counter, a duration histogram, and a guard outcome counter
// against the given registerer.
type PrometheusRecorder struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	guards   *prometheus.CounterVec
}

// NewPrometheusRecorder builds and registers the collectors. A nil
// registerer uses prometheus.DefaultRegisterer.
func NewPrometheusRecorder(reg prometheus.Registerer) (*PrometheusRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	r := &PrometheusRecorder{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dispatch",
			Name:      "requests_total",
			Help:      "Dispatched requests by method, route, and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dispatch",
			Name:      "duration_seconds",
			Help:      "Time spent dispatching one request.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		guards: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dispatch",
			Name:      "guard_outcomes_total",
			Help:      "Guard evaluations by route, guard, and outcome.",
		}, []string{"route", "guard", "outcome"}),
	}

	for _, c := range []prometheus.Collector{r.requests, r.duration, r.guards} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// StartRequest is a no-op for Prometheus; all recording happens at end.
func (r *PrometheusRecorder) StartRequest(ctx context.Context, _ *Request) context.Context {
	return ctx
}

// EndRequest records the counter and histogram samples.
func (r *PrometheusRecorder) EndRequest(_ context.Context, req *Request, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "none"
	}
	r.requests.WithLabelValues(req.Method, route, strconv.Itoa(status)).Inc()
	r.duration.WithLabelValues(req.Method, route).Observe(elapsed.Seconds())
}

// RecordGuard implements GuardObserver.
func (r *PrometheusRecorder) RecordGuard(_ context.Context, route, guard, outcome string) {
	r.guards.WithLabelValues(route, guard, outcome).Inc()
}

var (
	_ ObservabilityRecorder = (*PrometheusRecorder)(nil)
	_ GuardObserver         = (*PrometheusRecorder)(nil)
)
