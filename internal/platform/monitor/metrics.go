package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vitalwatch_monitor_cycles_total",
		Help: "Monitor polling cycles started.",
	})
	classificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vitalwatch_monitor_classifications_total",
		Help: "Readings classified, labelled by resulting severity.",
	}, []string{"severity"})
	statusChangesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vitalwatch_monitor_status_changes_total",
		Help: "Status-change events published.",
	})
	cycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "vitalwatch_monitor_cycle_duration_seconds",
		Help:    "Wall-clock duration of a monitor cycle.",
		Buckets: prometheus.DefBuckets,
	})
	patientsObserved = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vitalwatch_monitor_patients_observed",
		Help: "Patients with at least one reading in the last cycle.",
	})
)
