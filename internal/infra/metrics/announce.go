package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		announcementsComposedTotal,
		announcementParseFailuresTotal,
		announcementDeliveriesTotal,
		announcementDeliveryLatencyMs,
		announcementFlowsCancelledTotal,
	)
}

var (
	announcementsComposedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "announcements_composed_total",
			Help: "Announcements that parsed successfully and reached preview.",
		},
	)

	announcementParseFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "announcement_parse_failures_total",
			Help: "Rejected announcement submissions by parse error kind.",
		},
		[]string{"kind"},
	)

	announcementDeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "announcement_deliveries_total",
			Help: "Delivery dispatch outcomes by classified status.",
		},
		[]string{"status"},
	)

	announcementDeliveryLatencyMs = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "announcement_delivery_latency_ms",
			Help:    "Latency of the outbound announcement send in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000},
		},
	)

	announcementFlowsCancelledTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "announcement_flows_cancelled_total",
			Help: "Announcement flows aborted by the user before delivery.",
		},
	)
)

func IncAnnouncementComposed() {
	announcementsComposedTotal.Inc()
}

func IncParseFailure(kind string) {
	announcementParseFailuresTotal.WithLabelValues(norm(kind)).Inc()
}

func ObserveDelivery(status string, latencyMs int64) {
	announcementDeliveriesTotal.WithLabelValues(norm(status)).Inc()
	announcementDeliveryLatencyMs.Observe(float64(latencyMs))
}

func IncFlowCancelled() {
	announcementFlowsCancelledTotal.Inc()
}
