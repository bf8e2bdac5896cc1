package client

import "github.com/prometheus/client_golang/prometheus"

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hogu_client_requests_total",
			Help: "Total number of API request executions by method and status",
		},
		[]string{"method", "status"},
	)

	renewalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hogu_client_credential_renewals_total",
			Help: "Total number of credential renewal attempts by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal)
	prometheus.MustRegister(renewalsTotal)
}
