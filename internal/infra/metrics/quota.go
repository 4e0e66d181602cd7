package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(quotaDenialsTotal) }

var quotaDenialsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "quota_denials_total",
		Help: "Ledger denials by reason.",
	},
	[]string{"reason"},
)

func IncQuotaDenial(reason string) {
	quotaDenialsTotal.WithLabelValues(norm(reason)).Inc()
}
