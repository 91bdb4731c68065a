package triage

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the triage subsystem. All observe
// methods are nil-safe so tests can run without a registry.
type Metrics struct {
	DecisionsTotal       *prometheus.CounterVec
	DecisionDuration     *prometheus.HistogramVec
	SessionsCreatedTotal prometheus.Counter
	SessionsExpiredTotal prometheus.Counter
	SessionsClosedTotal  *prometheus.CounterVec
	RateLimitedTotal     *prometheus.CounterVec
	DuplicatesTotal      prometheus.Counter
	StrikesTotal         *prometheus.CounterVec
	SuspensionsTotal     prometheus.Counter
	OTCAttemptsTotal     prometheus.Counter
	OTCLocksTotal        prometheus.Counter
	OTCDowngradesTotal   prometheus.Counter
}

// NewMetrics registers and returns triage metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DecisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "careflow_decisions_total",
			Help: "Total routing decisions by decision kind.",
		}, []string{"decision"}),
		DecisionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "careflow_decision_duration_seconds",
			Help:    "Duration of triage decision transactions in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms .. ~4s
		}, []string{"decision"}),
		SessionsCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "careflow_sessions_created_total",
			Help: "Total sessions created.",
		}),
		SessionsExpiredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "careflow_sessions_expired_total",
			Help: "Total sessions lazily closed after the inactivity timeout.",
		}),
		SessionsClosedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "careflow_sessions_closed_total",
			Help: "Total sessions closed by a terminal decision.",
		}, []string{"decision"}),
		RateLimitedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "careflow_rate_limited_total",
			Help: "Total quota rejections by quota kind.",
		}, []string{"quota"}),
		DuplicatesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "careflow_duplicate_reminders_total",
			Help: "Total duplicate-symptom reminders issued.",
		}),
		StrikesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "careflow_scope_strikes_total",
			Help: "Total off-scope strikes by escalation level.",
		}, []string{"level"}),
		SuspensionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "careflow_suspensions_total",
			Help: "Total account suspensions issued.",
		}),
		OTCAttemptsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "careflow_otc_attempts_total",
			Help: "Total OTC guidance attempts granted.",
		}),
		OTCLocksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "careflow_otc_locks_total",
			Help: "Total users whose OTC budget reached its cap.",
		}),
		OTCDowngradesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "careflow_otc_downgrades_total",
			Help: "Total OTC-eligible decisions downgraded to a doctor handoff because the user is locked.",
		}),
	}

	reg.MustRegister(
		m.DecisionsTotal,
		m.DecisionDuration,
		m.SessionsCreatedTotal,
		m.SessionsExpiredTotal,
		m.SessionsClosedTotal,
		m.RateLimitedTotal,
		m.DuplicatesTotal,
		m.StrikesTotal,
		m.SuspensionsTotal,
		m.OTCAttemptsTotal,
		m.OTCLocksTotal,
		m.OTCDowngradesTotal,
	)

	return m
}

func (m *Metrics) observeDecision(d Decision, seconds float64) {
	if m == nil {
		return
	}
	m.DecisionsTotal.WithLabelValues(string(d)).Inc()
	m.DecisionDuration.WithLabelValues(string(d)).Observe(seconds)
}

func (m *Metrics) incSessionCreated() {
	if m == nil {
		return
	}
	m.SessionsCreatedTotal.Inc()
}

func (m *Metrics) incSessionExpired() {
	if m == nil {
		return
	}
	m.SessionsExpiredTotal.Inc()
}

func (m *Metrics) incSessionClosed(d Decision) {
	if m == nil {
		return
	}
	m.SessionsClosedTotal.WithLabelValues(string(d)).Inc()
}

func (m *Metrics) incRateLimited(quota string) {
	if m == nil {
		return
	}
	m.RateLimitedTotal.WithLabelValues(quota).Inc()
}

func (m *Metrics) incDuplicate() {
	if m == nil {
		return
	}
	m.DuplicatesTotal.Inc()
}

func (m *Metrics) incStrike(level HandoffReason) {
	if m == nil {
		return
	}
	m.StrikesTotal.WithLabelValues(string(level)).Inc()
}

func (m *Metrics) incSuspension() {
	if m == nil {
		return
	}
	m.SuspensionsTotal.Inc()
}

func (m *Metrics) incOTCAttempt(locked bool) {
	if m == nil {
		return
	}
	m.OTCAttemptsTotal.Inc()
	if locked {
		m.OTCLocksTotal.Inc()
	}
}

func (m *Metrics) incOTCDowngrade() {
	if m == nil {
		return
	}
	m.OTCDowngradesTotal.Inc()
}
