package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DraftsGenerated counts drafts produced across all generate calls.
	DraftsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pickpost_drafts_generated_total",
		Help: "Total email drafts generated",
	})

	// EmailsSent counts successfully dispatched drafts.
	EmailsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pickpost_emails_sent_total",
		Help: "Total emails handed to the mail transport",
	})

	// SendFailures counts drafts the mail transport rejected.
	SendFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pickpost_send_failures_total",
		Help: "Total email send failures",
	})

	// MatchFallbacks counts customers whose preference filter matched nothing
	// and who received generic recommendations instead.
	MatchFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pickpost_match_fallbacks_total",
		Help: "Total preference-filter fallbacks to the full catalogue",
	})

	// MatchDuration observes wall time of whole Match calls.
	MatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pickpost_match_duration_seconds",
		Help:    "Duration of catalogue/customer match runs",
		Buckets: prometheus.DefBuckets,
	})
)
