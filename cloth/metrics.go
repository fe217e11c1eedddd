package cloth

import (
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	errTypeLabel = "error_type"
)

var (
	clothTicks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cloth_ticks",
		Help: "The number of completed simulation ticks.",
	})

	clothTickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cloth_tick_duration_seconds",
		Help:    "The time spent computing a single tick.",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
	})

	clothOctreeNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cloth_octree_nodes",
		Help: "The number of octree nodes materialized while the index is populated.",
	})

	clothRepulseContacts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cloth_repulse_contacts",
		Help: "The number of particle pairs pushed apart by self repulsion.",
	})

	clothSphereContacts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cloth_sphere_contacts",
		Help: "The number of particle sphere contacts.",
	})

	clothStepErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cloth_step_errors",
		Help: "The errors that aborted a simulation tick.",
	}, []string{
		errTypeLabel,
	})
)

func observeTick(stats Stats) {
	clothTicks.Inc()
	clothTickDuration.Observe(stats.Duration.Seconds())
	clothOctreeNodes.Set(float64(stats.Nodes))
	clothRepulseContacts.Add(float64(stats.RepulseContacts))
	clothSphereContacts.Add(float64(stats.SphereContacts))
}

func observeStepError(err error, start time.Time) {
	clothStepErrors.WithLabelValues(errors.Type(err)).Inc()
	clothTickDuration.Observe(time.Since(start).Seconds())
}
