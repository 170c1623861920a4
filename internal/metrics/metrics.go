package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	BookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookings_created_total",
		Help: "Total number of created bookings",
	})

	BookingConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "booking_conflicts_total",
		Help: "Booking requests rejected because of an overlapping interval",
	})

	Transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workflow_transitions_total",
		Help: "Applied state transitions by entity and event",
	}, []string{"entity", "event"})

	NotificationsEnqueued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_enqueued_total",
		Help: "Notifications appended to user mailboxes",
	}, []string{"type"})

	NotificationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notification_enqueue_failures_total",
		Help: "Notifications that could not be stored",
	})

	RatingRecomputes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rating_recomputes_total",
		Help: "Designer rating recomputations",
	})
)

// Transition учитывает примененный переход
func Transition(entity, event string) {
	Transitions.WithLabelValues(entity, event).Inc()
}

// Handler - /metrics для gin
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
