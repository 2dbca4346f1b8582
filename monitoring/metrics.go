package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionsOnline = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "desk_sessions_online_total",
			Help: "Current number of logged-in player sessions",
		},
	)

	adminsOnline = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "desk_admins_online_total",
			Help: "Current number of authorized admin connections",
		},
	)

	queueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "desk_queue_length_total",
			Help: "Current number of sessions waiting for an opponent",
		},
	)

	activeDesks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "desk_active_total",
			Help: "Current number of active desks",
		},
	)

	operations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "desk_operations_total",
			Help: "Total coordinator operations by type and outcome",
		},
		[]string{"operation", "status"},
	)

	deskResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "desk_resolutions_total",
			Help: "Total resolved desks by close reason",
		},
		[]string{"reason"},
	)

	lotteryDraws = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "desk_lottery_draws_total",
			Help: "Total lottery draws performed",
		},
	)
)

// Track coordinator operations
func TrackOperation(operation, status string) {
	operations.WithLabelValues(operation, status).Inc()
}

// Track desk resolutions
func TrackDeskResolution(reason string) {
	deskResolutions.WithLabelValues(reason).Inc()
}

func TrackLotteryDraw() {
	lotteryDraws.Inc()
}

func SetSessionsOnline(n int) {
	sessionsOnline.Set(float64(n))
}

func SetAdminsOnline(n int) {
	adminsOnline.Set(float64(n))
}

func SetQueueLength(n int) {
	queueLength.Set(float64(n))
}

func SetActiveDesks(n int) {
	activeDesks.Set(float64(n))
}
