package signaling

import "github.com/prometheus/client_golang/prometheus"

var (
	wsConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "reelgram_ws_connections",
			Help: "Current number of active websocket connections.",
		},
	)
	wsRooms = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "reelgram_ws_rooms",
			Help: "Current number of signaling rooms.",
		},
	)
	wsEventsDelivered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reelgram_ws_events_delivered_total",
			Help: "Total relay events delivered to clients.",
		},
	)
	fallbackAppends = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reelgram_signal_fallback_appends_total",
			Help: "Total signaling messages appended to fallback queues.",
		},
	)
)

func init() {
	prometheus.MustRegister(wsConnections, wsRooms, wsEventsDelivered, fallbackAppends)
}

func incConnections() {
	wsConnections.Inc()
}

func decConnections() {
	wsConnections.Dec()
}

func setRooms(count int) {
	wsRooms.Set(float64(count))
}

func addDelivered(count int) {
	wsEventsDelivered.Add(float64(count))
}

func incFallbackAppends() {
	fallbackAppends.Inc()
}
