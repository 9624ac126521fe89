package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// LendingMetrics exposes the Prometheus instrumentation surface for the
// registry, reputation, and lending engines, grounded on the teacher's
// PotsoMetrics singleton (observability/metrics/potso.go): one
// lazily-registered counter/gauge set per concern, nil-receiver safe so
// engines built without a metrics handle never need a nil check.
type LendingMetrics struct {
	usersRegistered      prometheus.Counter
	vouchesActive        prometheus.Gauge
	vouchesAddedTotal    prometheus.Counter
	vouchesRemovedTotal  prometheus.Counter
	slashesTotal         *prometheus.CounterVec
	scoreDeltasTotal     *prometheus.CounterVec
	loansOriginatedTotal *prometheus.CounterVec
	loansRepaidTotal     prometheus.Counter
	loansDefaultedTotal  prometheus.Counter
	collateralSeizedSum  prometheus.Gauge
	rateLimitRejections  *prometheus.CounterVec
}

var (
	lendingOnce     sync.Once
	lendingRegistry *LendingMetrics
)

func Lending() *LendingMetrics {
	lendingOnce.Do(func() {
		lendingRegistry = &LendingMetrics{
			usersRegistered: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "registry_users_registered_total",
				Help: "Count of successful user registrations.",
			}),
			vouchesActive: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "reputation_vouches_active",
				Help: "Current count of active vouches across all borrowers.",
			}),
			vouchesAddedTotal: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "reputation_vouches_added_total",
				Help: "Count of AddVouch calls that succeeded.",
			}),
			vouchesRemovedTotal: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "reputation_vouches_removed_total",
				Help: "Count of RemoveVouch calls that succeeded.",
			}),
			slashesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "reputation_slashes_total",
				Help: "Count of vouch slashes by trigger reason.",
			}, []string{"reason"}),
			scoreDeltasTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "reputation_score_deltas_total",
				Help: "Count of CurrentScore adjustments by outcome reason.",
			}, []string{"reason"}),
			loansOriginatedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "lending_agreements_originated_total",
				Help: "Count of loan agreements created, by origin (offer or request).",
			}, []string{"origin"}),
			loansRepaidTotal: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "lending_agreements_repaid_total",
				Help: "Count of loan agreements that reached Repaid status.",
			}),
			loansDefaultedTotal: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "lending_agreements_defaulted_total",
				Help: "Count of loan agreements that reached Defaulted status.",
			}),
			collateralSeizedSum: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "lending_collateral_seized_sum",
				Help: "Running total of collateral amounts seized on default.",
			}),
			rateLimitRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "lending_rate_limit_rejections_total",
				Help: "Count of calls rejected by the per-address rate limiter, by module.",
			}, []string{"module"}),
		}
		prometheus.MustRegister(
			lendingRegistry.usersRegistered,
			lendingRegistry.vouchesActive,
			lendingRegistry.vouchesAddedTotal,
			lendingRegistry.vouchesRemovedTotal,
			lendingRegistry.slashesTotal,
			lendingRegistry.scoreDeltasTotal,
			lendingRegistry.loansOriginatedTotal,
			lendingRegistry.loansRepaidTotal,
			lendingRegistry.loansDefaultedTotal,
			lendingRegistry.collateralSeizedSum,
			lendingRegistry.rateLimitRejections,
		)
	})
	return lendingRegistry
}

func (m *LendingMetrics) IncUsersRegistered() {
	if m == nil {
		return
	}
	m.usersRegistered.Inc()
}

func (m *LendingMetrics) IncVouchAdded() {
	if m == nil {
		return
	}
	m.vouchesAddedTotal.Inc()
	m.vouchesActive.Inc()
}

func (m *LendingMetrics) IncVouchRemoved() {
	if m == nil {
		return
	}
	m.vouchesRemovedTotal.Inc()
	m.vouchesActive.Dec()
}

func (m *LendingMetrics) IncSlash(reason string) {
	if m == nil {
		return
	}
	m.slashesTotal.WithLabelValues(normalise(reason)).Inc()
	m.vouchesActive.Dec()
}

func (m *LendingMetrics) IncScoreDelta(reason string) {
	if m == nil {
		return
	}
	m.scoreDeltasTotal.WithLabelValues(normalise(reason)).Inc()
}

func (m *LendingMetrics) IncLoanOriginated(origin string) {
	if m == nil {
		return
	}
	m.loansOriginatedTotal.WithLabelValues(normalise(origin)).Inc()
}

func (m *LendingMetrics) IncLoanRepaid() {
	if m == nil {
		return
	}
	m.loansRepaidTotal.Inc()
}

func (m *LendingMetrics) IncLoanDefaulted() {
	if m == nil {
		return
	}
	m.loansDefaultedTotal.Inc()
}

func (m *LendingMetrics) AddCollateralSeized(amount float64) {
	if m == nil {
		return
	}
	m.collateralSeizedSum.Add(amount)
}

func (m *LendingMetrics) IncRateLimitRejection(module string) {
	if m == nil {
		return
	}
	m.rateLimitRejections.WithLabelValues(normalise(module)).Inc()
}

func normalise(label string) string {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return "unknown"
	}
	return strings.ToLower(trimmed)
}
