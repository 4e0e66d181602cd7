package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		checkoutsTotal,
		webhookEventsTotal,
		subscriptionActivationsTotal,
	)
}

var (
	checkoutsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkouts_total",
			Help: "Checkout attempts by outcome (started/session_failed/persist_failed).",
		},
		[]string{"outcome"},
	)

	webhookEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_webhook_events_total",
			Help: "Inbound payment events by kind and outcome (applied/duplicate/correlation_missing/error/rejected).",
		},
		[]string{"kind", "outcome"},
	)

	subscriptionActivationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscription_activations_total",
			Help: "Subscriptions activated, by plan.",
		},
		[]string{"plan"},
	)
)

func IncCheckout(outcome string) {
	checkoutsTotal.WithLabelValues(norm(outcome)).Inc()
}

func IncWebhookEvent(kind, outcome string) {
	webhookEventsTotal.WithLabelValues(norm(kind), norm(outcome)).Inc()
}

func IncSubscriptionActivation(plan string) {
	subscriptionActivationsTotal.WithLabelValues(norm(plan)).Inc()
}
