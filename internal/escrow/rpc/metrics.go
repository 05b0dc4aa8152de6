package rpc

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tugrulb/escrowmarket/internal/escrow"
)

var (
	escrowRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "escrow_gateway_requests_total",
			Help: "Total number of escrow gateway calls",
		},
		[]string{"operation", "outcome"},
	)

	escrowRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "escrow_gateway_request_duration_seconds",
			Help:    "Escrow gateway call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// outcomeLabel collapses a call result into a metric label. Errors carry
// their classified kind so dashboards can split rejections from outages.
func outcomeLabel(err error) string {
	if err == nil {
		return "success"
	}
	var e *escrow.Error
	if errors.As(err, &e) {
		switch e.Kind {
		case escrow.KindRejected:
			return "rejected"
		case escrow.KindTimeout:
			return "timeout"
		}
	}
	return "unavailable"
}
