package engine

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/xela07ax/transit-assistant/internal/domain"
)

type Metrics struct {
	// Latency: сколько заняла обработка команды
	CommandDuration *prometheus.HistogramVec

	// Traffic: команды по интенту и исходу
	CommandsTotal *prometheus.CounterVec

	// Errors: классификация отказов
	ErrorTotal *prometheus.CounterVec

	// Saturation: размер журнала в памяти (упирается в retention cap)
	LogSize prometheus.Gauge

	// Stream: заполненность буфера и сброшенные записи (backpressure)
	StreamPending prometheus.GaugeFunc
	StreamDropped prometheus.CounterFunc
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	// Null Object Pattern - Если рег не передан, используем локальный, который никуда не подключен
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		CommandDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "assistant_command_duration_seconds",
			Help:    "Histogram of command processing latencies.",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"intent", "status"}),

		CommandsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_commands_total",
			Help: "Total number of processed commands.",
		}, []string{"intent", "status"}),

		ErrorTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_errors_total",
			Help: "Total number of errors by type.",
		}, []string{"type"}), // типы: handler_failed, no_handler

		LogSize: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "assistant_interaction_log_size",
			Help: "Current number of records in the in-memory interaction log.",
		}),
	}
}

// StreamStats — то, что метрики знают о потоке записей
type StreamStats interface {
	Pending() int
	Dropped() int64
}

// RegisterStream вешает на реестр gauge буфера и счетчик сброшенных записей
func (m *Metrics) RegisterStream(reg prometheus.Registerer, s StreamStats) {
	if reg == nil || s == nil {
		return
	}
	m.StreamPending = promauto.With(reg).NewGaugeFunc(prometheus.GaugeOpts{
		Name: "assistant_stream_buffer_utilization",
		Help: "Current number of records waiting in the interaction stream buffer.",
	}, func() float64 { return float64(s.Pending()) })

	m.StreamDropped = promauto.With(reg).NewCounterFunc(prometheus.CounterOpts{
		Name: "assistant_stream_dropped_total",
		Help: "Records dropped by the interaction stream on buffer overflow.",
	}, func() float64 { return float64(s.Dropped()) })
}

func errorType(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoHandler):
		return "no_handler"
	case errors.Is(err, domain.ErrHandlerFailed):
		return "handler_failed"
	default:
		return "internal"
	}
}
