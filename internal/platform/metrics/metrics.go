package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the configuration pipeline.
type Metrics struct {
	Rebuilds        *prometheus.CounterVec
	RebuildDuration prometheus.Histogram
	TenantsLoaded   prometheus.Gauge
	TenantsSkipped  prometheus.Counter
	ChangeEvents    *prometheus.CounterVec
	Notifications   *prometheus.CounterVec
	RuleEvaluations *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		Rebuilds: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tenantgrid_rebuilds_total",
			Help: "Configuration rebuild attempts by outcome",
		}, []string{"outcome"}),
		RebuildDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tenantgrid_rebuild_duration_seconds",
			Help:    "Time spent rebuilding the tenant tree and registry",
			Buckets: prometheus.DefBuckets,
		}),
		TenantsLoaded: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "tenantgrid_tenants_loaded",
			Help: "Tenants present in the last published snapshot",
		}),
		TenantsSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tenantgrid_tenants_skipped_total",
			Help: "Tenants excluded from a rebuild (unreachable or unresolved parent)",
		}),
		ChangeEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tenantgrid_change_events_total",
			Help: "Change events by disposition (triggered, filtered, error)",
		}, []string{"disposition"}),
		Notifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tenantgrid_notifications_total",
			Help: "Config-reloaded notifications by outcome",
		}, []string{"outcome"}),
		RuleEvaluations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tenantgrid_rule_evaluations_total",
			Help: "Rule pipeline evaluations by outcome",
		}, []string{"outcome"}),
	}
}
