// Package observability provides Prometheus metrics and OpenTelemetry tracing.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthEvents counts auth operations by event and outcome code.
	AuthEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nestaway_auth_events_total",
		Help: "Auth operations by event and result",
	}, []string{"event", "result"})

	// ListingsCreated counts successfully persisted listings.
	ListingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nestaway_listings_created_total",
		Help: "Total number of listings created",
	})

	// ImageUploads counts object storage uploads by result.
	ImageUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nestaway_image_uploads_total",
		Help: "Listing image uploads by result",
	}, []string{"result"})

	// MailDispatch counts verification mail sends by driver and result.
	MailDispatch = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nestaway_mail_dispatch_total",
		Help: "Verification mail dispatches by driver and result",
	}, []string{"driver", "result"})

	// CacheLookups counts listing cache lookups by layer and result.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nestaway_cache_lookups_total",
		Help: "Cache lookups by layer and result",
	}, []string{"layer", "result"})

	// WebSocketConnections is the number of live listing feed subscribers.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "nestaway_websocket_connections",
		Help: "Number of active listing feed WebSocket connections",
	})

	// WebSocketBackpressureDrops counts feed messages dropped for slow clients.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nestaway_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})
)

// Result labels shared by the counters above.
const (
	ResultOK    = "ok"
	ResultError = "error"
	ResultHit   = "hit"
	ResultMiss  = "miss"
)
