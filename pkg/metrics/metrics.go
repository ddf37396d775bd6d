package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Cluster metrics
	NodeCPUPercent = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "shepherd_node_cpu_percent",
			Help: "Observed CPU usage per node as percent of allocatable",
		},
		[]string{"node"},
	)

	ClusterCPUPercent = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "shepherd_cluster_cpu_percent",
			Help: "Average CPU usage across all observed nodes",
		},
	)

	MetricsSourceAvailable = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "shepherd_metrics_source_available",
			Help: "Whether the metrics API is serving real samples (1) or the estimator is active (0)",
		},
	)

	// Scheduling metrics
	DecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shepherd_scheduling_decisions_total",
			Help: "Total number of committed placements by policy",
		},
		[]string{"policy"},
	)

	BindingErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shepherd_binding_errors_total",
			Help: "Total number of failed binding attempts by reason",
		},
		[]string{"reason"},
	)

	StrategySwitchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shepherd_strategy_switches_total",
			Help: "Total number of strategy switches",
		},
	)

	PendingPods = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "shepherd_pending_pods",
			Help: "Pending pods seen in the last scheduling pass",
		},
	)

	SchedulingLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shepherd_scheduling_latency_seconds",
			Help:    "Time taken to place one pod in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(NodeCPUPercent)
	prometheus.MustRegister(ClusterCPUPercent)
	prometheus.MustRegister(MetricsSourceAvailable)
	prometheus.MustRegister(DecisionsTotal)
	prometheus.MustRegister(BindingErrorsTotal)
	prometheus.MustRegister(StrategySwitchesTotal)
	prometheus.MustRegister(PendingPods)
	prometheus.MustRegister(SchedulingLatency)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
