package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder publishes habit store activity as Prometheus series.
type Recorder struct {
	registry      *prometheus.Registry
	mutations     *prometheus.CounterVec
	notifications *prometheus.CounterVec
	habits        prometheus.Gauge
}

func NewRecorder(reg *prometheus.Registry) *Recorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		mutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "habitd_mutations_total",
				Help: "Habit store operations by operation and result",
			},
			[]string{"op", "result"}, // op: add, update_progress, delete; result: ok, rejected, not_found
		),
		notifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "habitd_notifications_total",
				Help: "Notification slot transitions",
			},
			[]string{"kind"},
		),
		habits: factory.NewGauge(prometheus.GaugeOpts{
			Name: "habitd_habits",
			Help: "Number of habits in the current snapshot",
		}),
	}
}

func (r *Recorder) ObserveMutation(op, result string) {
	r.mutations.WithLabelValues(op, result).Inc()
}

func (r *Recorder) ObserveNotification(kind string) {
	r.notifications.WithLabelValues(kind).Inc()
}

func (r *Recorder) SetHabitCount(n int) {
	r.habits.Set(float64(n))
}

// Handler serves the recorder's registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
