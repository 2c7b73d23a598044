package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder backed by a Prometheus registry.
type PrometheusRecorder struct {
	checkoutCreated     prometheus.Counter
	checkoutFailed      prometheus.Counter
	webhookEvents       *prometheus.CounterVec
	creditsGranted      prometheus.Counter
	creditsSpent        prometheus.Counter
	insufficientCredits prometheus.Counter
	chatTurnDuration    prometheus.Histogram
	loginsStarted       prometheus.Counter
	loginsVerified      prometheus.Counter
}

// NewPrometheus creates a PrometheusRecorder and registers its
// collectors with the given registry.
func NewPrometheus(reg prometheus.Registerer) *PrometheusRecorder {
	r := &PrometheusRecorder{
		checkoutCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "npdirect_checkout_sessions_created_total",
			Help: "Checkout sessions successfully created with the payments provider.",
		}),
		checkoutFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "npdirect_checkout_sessions_failed_total",
			Help: "Checkout session creation failures.",
		}),
		webhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "npdirect_webhook_events_total",
			Help: "Payment webhook deliveries by outcome.",
		}, []string{"outcome"}),
		creditsGranted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "npdirect_credits_granted_total",
			Help: "Credits granted through completed payments.",
		}),
		creditsSpent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "npdirect_credits_spent_total",
			Help: "Credits spent on conversation turns.",
		}),
		insufficientCredits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "npdirect_insufficient_credits_total",
			Help: "Conversation turns refused for lack of credits.",
		}),
		chatTurnDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "npdirect_chat_turn_duration_seconds",
			Help:    "End-to-end duration of conversation turns.",
			Buckets: prometheus.DefBuckets,
		}),
		loginsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "npdirect_logins_started_total",
			Help: "Magic links issued.",
		}),
		loginsVerified: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "npdirect_logins_verified_total",
			Help: "Magic links successfully exchanged for sessions.",
		}),
	}

	reg.MustRegister(
		r.checkoutCreated,
		r.checkoutFailed,
		r.webhookEvents,
		r.creditsGranted,
		r.creditsSpent,
		r.insufficientCredits,
		r.chatTurnDuration,
		r.loginsStarted,
		r.loginsVerified,
	)

	return r
}

// IncCheckoutCreated records a created checkout session.
func (r *PrometheusRecorder) IncCheckoutCreated() {
	r.checkoutCreated.Inc()
}

// IncCheckoutFailed records a failed checkout session creation.
func (r *PrometheusRecorder) IncCheckoutFailed() {
	r.checkoutFailed.Inc()
}

// IncWebhookEvent records a webhook delivery outcome.
func (r *PrometheusRecorder) IncWebhookEvent(outcome string) {
	r.webhookEvents.WithLabelValues(outcome).Inc()
}

// AddCreditsGranted records granted credits.
func (r *PrometheusRecorder) AddCreditsGranted(count int) {
	r.creditsGranted.Add(float64(count))
}

// IncCreditSpent records one spent credit.
func (r *PrometheusRecorder) IncCreditSpent() {
	r.creditsSpent.Inc()
}

// IncInsufficientCredits records a refused turn.
func (r *PrometheusRecorder) IncInsufficientCredits() {
	r.insufficientCredits.Inc()
}

// ObserveChatTurnDuration records a turn's duration.
func (r *PrometheusRecorder) ObserveChatTurnDuration(duration time.Duration) {
	r.chatTurnDuration.Observe(duration.Seconds())
}

// IncLoginStarted records an issued magic link.
func (r *PrometheusRecorder) IncLoginStarted() {
	r.loginsStarted.Inc()
}

// IncLoginVerified records a verified login.
func (r *PrometheusRecorder) IncLoginVerified() {
	r.loginsVerified.Inc()
}
