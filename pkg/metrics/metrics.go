package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// APIRequestDuration tracks façade calls by endpoint group (first path segment).
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pmsync_api_request_duration_seconds",
			Help:    "Backend API request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		},
		[]string{"method", "endpoint", "status"},
	)

	// APIUnauthorized counts 401 responses that cleared the stored token.
	APIUnauthorized = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pmsync_api_unauthorized_total",
			Help: "Responses with status 401 that cleared the stored token",
		},
	)

	RealtimeReconnects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pmsync_realtime_reconnects_total",
			Help: "Scheduled WebSocket reconnect attempts",
		},
	)

	RealtimeConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pmsync_realtime_connected",
			Help: "1 while the notification WebSocket is open",
		},
	)

	NotificationsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pmsync_notifications_received_total",
			Help: "Notifications received, by source and type",
		},
		[]string{"source", "type"}, // source: push, poll
	)

	// CalendarSource counts calendar loads by the source that served them.
	CalendarSource = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pmsync_calendar_loads_total",
			Help: "Calendar loads by source (live, cached, mock)",
		},
		[]string{"mode"},
	)
)
