// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Merge results recorded by RecordMerge.
const (
	MergeOK        = "ok"
	MergeConflict  = "conflict"
	MergeDuplicate = "duplicate"
	MergeInvalid   = "invalid"
)

// Call statuses recorded by RecordCall.
const (
	CallOK    = "ok"
	CallError = "error"
	CallPanic = "panic"
)

// Metrics holds the Prometheus collectors of a process. A nil *Metrics
// records nothing.
type Metrics struct {
	mergesTotal    *prometheus.CounterVec
	conflictsTotal *prometheus.CounterVec
	procedures     prometheus.Gauge
	callsTotal     *prometheus.CounterVec
	callDuration   *prometheus.HistogramVec
	registry       *prometheus.Registry
}

// NewMetrics creates collectors under namespace in a private registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "rpcrouter"
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}

	m.mergesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "merges_total",
			Help:      "Total number of router merges by result",
		},
		[]string{"result"},
	)

	m.conflictsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "merge_conflicts_total",
			Help:      "Total number of configuration conflicts by field",
		},
		[]string{"field"},
	)

	m.procedures = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "router_procedures",
			Help:      "Number of procedures in the last merged router",
		},
	)

	m.callsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_total",
			Help:      "Total number of dispatched procedure calls",
		},
		[]string{"path", "status"},
	)

	m.callDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "call_duration_seconds",
			Help:      "Procedure call duration in seconds",
			Buckets: []float64{
				.0005, .001, .005, .01, .025, .05,
				.1, .25, .5, 1, 2.5, 5,
			},
		},
		[]string{"path"},
	)

	m.registry.MustRegister(
		m.mergesTotal,
		m.conflictsTotal,
		m.procedures,
		m.callsTotal,
		m.callDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// RecordMerge counts a merge and, on success, the merged router's size.
func (m *Metrics) RecordMerge(result string, procedures int) {
	if m == nil {
		return
	}
	m.mergesTotal.WithLabelValues(result).Inc()
	if result == MergeOK {
		m.procedures.Set(float64(procedures))
	}
}

// RecordConflict counts a conflict on field.
func (m *Metrics) RecordConflict(field string) {
	if m == nil {
		return
	}
	m.conflictsTotal.WithLabelValues(field).Inc()
}

// RecordCall counts a dispatched call and observes its duration.
func (m *Metrics) RecordCall(path, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.callsTotal.WithLabelValues(path, status).Inc()
	m.callDuration.WithLabelValues(path).Observe(d.Seconds())
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler exposing the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}
