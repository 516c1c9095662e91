package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ticketsIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventpass_tickets_issued_total",
			Help: "Tickets issued",
		},
	)

	redemptions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventpass_redemptions_total",
			Help: "Benefit redemption attempts by result",
		},
		[]string{"result"},
	)

	pinChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventpass_pin_checks_total",
			Help: "PIN verifications by result",
		},
		[]string{"result"},
	)

	scans = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventpass_scans_total",
			Help: "QR scans by result",
		},
		[]string{"result"},
	)

	renders = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventpass_renders_total",
			Help: "Ticket renders by mode and result",
		},
		[]string{"mode", "result"},
	)

	renderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventpass_render_duration_seconds",
			Help:    "Time spent rasterizing a ticket",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"mode"},
	)

	liveClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "eventpass_live_clients",
			Help: "Connected live dashboard clients",
		},
	)
)

func TicketIssued() {
	ticketsIssued.Inc()
}

// Result labels are short machine codes such as "ok" or "invalid_pin".
func Redemption(result string) {
	redemptions.WithLabelValues(result).Inc()
}

func PinCheck(ok bool) {
	pinChecks.WithLabelValues(okLabel(ok)).Inc()
}

func Scan(result string) {
	scans.WithLabelValues(result).Inc()
}

func Render(mode string, took time.Duration, err error) {
	renders.WithLabelValues(mode, okLabel(err == nil)).Inc()
	renderDuration.WithLabelValues(mode).Observe(took.Seconds())
}

func LiveClientConnected() {
	liveClients.Inc()
}

func LiveClientDisconnected() {
	liveClients.Dec()
}

func okLabel(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}
