// Package metrics records resolution counters for Prometheus scraping.
// Registration is lazy so that library consumers who never call Init pay
// nothing and pollute no registry.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	secretResolutionsTotal *prometheus.CounterVec
	resolutionErrorsTotal  *prometheus.CounterVec
	expansionErrorsTotal   prometheus.Counter

	metricsOnce sync.Once
	enabled     bool
)

// Init registers the envresolve metrics with the default Prometheus
// registry. Safe to call more than once.
func Init() {
	metricsOnce.Do(func() {
		secretResolutionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "envresolve_secret_resolutions_total",
				Help: "Total number of secret references resolved, by scheme",
			},
			[]string{"scheme"},
		)

		resolutionErrorsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "envresolve_resolution_errors_total",
				Help: "Total number of failed secret resolutions, by scheme",
			},
			[]string{"scheme"},
		)

		expansionErrorsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "envresolve_expansion_errors_total",
				Help: "Total number of variable expansion failures",
			},
		)

		enabled = true
	})
}

// Enabled reports whether Init has registered the counters.
func Enabled() bool {
	return enabled
}

// RecordResolution counts one successful secret resolution for a scheme.
func RecordResolution(scheme string) {
	if !enabled {
		return
	}
	secretResolutionsTotal.WithLabelValues(scheme).Inc()
}

// RecordResolutionError counts one failed secret resolution for a scheme.
func RecordResolutionError(scheme string) {
	if !enabled {
		return
	}
	resolutionErrorsTotal.WithLabelValues(scheme).Inc()
}

// RecordExpansionError counts one variable expansion failure.
func RecordExpansionError() {
	if !enabled {
		return
	}
	expansionErrorsTotal.Inc()
}
