package realtime

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	activeConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lecture_live_ws_connections",
		Help: "Current number of open WebSocket connections.",
	})

	roomJoins = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lecture_live_room_joins_total",
		Help: "Total number of session room joins.",
	})

	eventsBroadcast = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lecture_live_events_broadcast_total",
		Help: "Total number of events fanned out to room members.",
	})

	droppedSends = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lecture_live_dropped_sends_total",
		Help: "Events dropped because a client send buffer was full.",
	})
)
