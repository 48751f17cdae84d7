package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	EntriesProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "follower_entries_processed_total",
			Help: "Total number of log entries closed by the follower (count)",
		},
		[]string{"status"},
	)

	PayloadDecodeFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "follower_payload_decode_failures_total",
			Help: "Total number of entries whose embedded payload failed to decode",
		},
	)

	RecordsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "follower_records_published_total",
			Help: "Total number of records submitted to the API by record kind",
		},
		[]string{"kind", "status"},
	)

	PublishRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "follower_publish_retries_total",
			Help: "Total number of publish attempts retried on a server error",
		},
	)

	PublishDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "follower_publish_duration_ms",
			Help:    "Publish duration in milliseconds, including retries",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
	)
)

func Register() {
	prometheus.MustRegister(
		EntriesProcessedTotal,
		PayloadDecodeFailuresTotal,
		RecordsPublishedTotal,
		PublishRetriesTotal,
		PublishDuration,
	)
}

func ObservePublishDuration(ms float64) {
	PublishDuration.Observe(ms)
}
