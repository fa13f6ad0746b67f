package claims

import (
	"github.com/prometheus/client_golang/prometheus"

	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

var (
	metricPoolSize = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "hive_claims_manager_pool_size",
		Help: "The configured size of the ClusterPool.",
	}, []string{"pool"})
	metricPoolAvailable = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "hive_claims_manager_pool_available",
		Help: "The number of unclaimed clusters reported by the ClusterPool.",
	}, []string{"pool"})
	metricPoolClaimed = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "hive_claims_manager_pool_claimed",
		Help: "The number of clusters of the ClusterPool which are claimed.",
	}, []string{"pool"})
	// metricClaimOperations counts claim creations and deletions, labeled by outcome.
	metricClaimOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hive_claims_manager_claim_operations_total",
		Help: "Counter incremented for each ClusterClaim create or delete issued by the claims manager.",
	}, []string{"operation", "result"})
	metricClaimsResolved = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hive_claims_manager_claims_resolved_total",
		Help: "Counter incremented for each claim resolved into a view, labeled by the state of the view.",
	}, []string{"state"})
	// metricResolveDurationSeconds tracks how long it takes to resolve every claim of the namespace.
	metricResolveDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "hive_claims_manager_resolve_duration_seconds",
		Help:    "Time taken to resolve all claims into views.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})
)

const (
	resultSuccess = "success"
	resultError   = "error"

	stateReady    = "ready"
	stateNotReady = "not_ready"
	stateDegraded = "degraded"
	stateCached   = "cached"
)

func init() {
	metrics.Registry.MustRegister(metricPoolSize)
	metrics.Registry.MustRegister(metricPoolAvailable)
	metrics.Registry.MustRegister(metricPoolClaimed)
	metrics.Registry.MustRegister(metricClaimOperations)
	metrics.Registry.MustRegister(metricClaimsResolved)
	metrics.Registry.MustRegister(metricResolveDurationSeconds)
}

func recordPool(pool Pool) {
	metricPoolSize.WithLabelValues(pool.Name).Set(float64(pool.Size))
	metricPoolAvailable.WithLabelValues(pool.Name).Set(float64(pool.Available))
	metricPoolClaimed.WithLabelValues(pool.Name).Set(float64(pool.Claimed))
}

func recordClaimOperation(operation string, err error) {
	result := resultSuccess
	if err != nil {
		result = resultError
	}
	metricClaimOperations.WithLabelValues(operation, result).Inc()
}
