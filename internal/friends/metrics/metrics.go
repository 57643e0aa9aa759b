package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the relationship domain counters. A nil *Metrics is valid
// and records nothing, so components can run without a registry in tests.
type Metrics struct {
	InvitationsCreated  prometheus.Counter
	InvitationsAccepted prometheus.Counter
	InvitationsDenied   prometheus.Counter
	InvitationsCanceled prometheus.Counter
	InvitationsExpired  prometheus.Counter
	Rejections          *prometheus.CounterVec
	FriendshipsAdded    prometheus.Counter
	FriendshipsRemoved  prometheus.Counter
	ActiveIdentities    prometheus.Gauge
	PersistFailures     *prometheus.CounterVec
	ResolverLatency     *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		InvitationsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "friendsd_invitations_created_total",
			Help: "Friend invitations created",
		}),
		InvitationsAccepted: factory.NewCounter(prometheus.CounterOpts{
			Name: "friendsd_invitations_accepted_total",
			Help: "Friend invitations accepted by the receiver",
		}),
		InvitationsDenied: factory.NewCounter(prometheus.CounterOpts{
			Name: "friendsd_invitations_denied_total",
			Help: "Friend invitations denied by the receiver",
		}),
		InvitationsCanceled: factory.NewCounter(prometheus.CounterOpts{
			Name: "friendsd_invitations_canceled_total",
			Help: "Friend invitations withdrawn by the sender",
		}),
		InvitationsExpired: factory.NewCounter(prometheus.CounterOpts{
			Name: "friendsd_invitations_expired_total",
			Help: "Friend invitations that reached their deadline unanswered",
		}),
		Rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "friendsd_operation_rejections_total",
			Help: "Relationship operations rejected with a user error, by operation and code",
		}, []string{"operation", "code"}),
		FriendshipsAdded: factory.NewCounter(prometheus.CounterOpts{
			Name: "friendsd_friendships_added_total",
			Help: "Friendships confirmed",
		}),
		FriendshipsRemoved: factory.NewCounter(prometheus.CounterOpts{
			Name: "friendsd_friendships_removed_total",
			Help: "Friendships removed by kick",
		}),
		ActiveIdentities: factory.NewGauge(prometheus.GaugeOpts{
			Name: "friendsd_active_identities",
			Help: "Players currently active with a cached relationship set",
		}),
		PersistFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "friendsd_persist_failures_total",
			Help: "Relationship store writes that failed, by path",
		}, []string{"path"}),
		ResolverLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "friendsd_resolver_lookup_seconds",
			Help:    "Latency of remote name lookups by result",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"result"}),
	}
}

func (m *Metrics) IncInvitationsCreated() {
	if m != nil {
		m.InvitationsCreated.Inc()
	}
}

func (m *Metrics) IncInvitationsAccepted() {
	if m != nil {
		m.InvitationsAccepted.Inc()
	}
}

func (m *Metrics) IncInvitationsDenied() {
	if m != nil {
		m.InvitationsDenied.Inc()
	}
}

func (m *Metrics) IncInvitationsCanceled() {
	if m != nil {
		m.InvitationsCanceled.Inc()
	}
}

func (m *Metrics) IncInvitationsExpired() {
	if m != nil {
		m.InvitationsExpired.Inc()
	}
}

func (m *Metrics) IncRejection(operation, code string) {
	if m != nil {
		m.Rejections.WithLabelValues(operation, code).Inc()
	}
}

func (m *Metrics) IncFriendshipsAdded() {
	if m != nil {
		m.FriendshipsAdded.Inc()
	}
}

func (m *Metrics) IncFriendshipsRemoved() {
	if m != nil {
		m.FriendshipsRemoved.Inc()
	}
}

func (m *Metrics) SetActiveIdentities(count int) {
	if m != nil {
		m.ActiveIdentities.Set(float64(count))
	}
}

func (m *Metrics) IncPersistFailure(path string) {
	if m != nil {
		m.PersistFailures.WithLabelValues(path).Inc()
	}
}

func (m *Metrics) ObserveResolverLookup(result string, seconds float64) {
	if m != nil {
		m.ResolverLatency.WithLabelValues(result).Observe(seconds)
	}
}
