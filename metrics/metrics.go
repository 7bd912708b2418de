package metrics

import (
	"context"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/cpu"
)

// DefaultObserveFrequency is how often CPU and memory are sampled.
const DefaultObserveFrequency = 1 * time.Second

// Metrics holds the collectors of the static server.
type Metrics struct {
	CPU             prometheus.Gauge
	AllocatedMemory prometheus.Gauge
	Requests        *prometheus.CounterVec
	ResponseSize    prometheus.Histogram

	logger *log.Logger
}

// New creates the collectors and registers them in reg.
func New(reg prometheus.Registerer, logger *log.Logger) *Metrics {
	m := &Metrics{
		CPU: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "browsergator_cpu_usage",
			Help: "CPU usage of the host, percent",
		}),
		AllocatedMemory: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "browsergator_allocated_memory",
			Help: "Bytes of allocated heap objects",
		}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "browsergator_requests_total",
			Help: "How many requests were served",
		}, []string{"method", "code"}),
		ResponseSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "browsergator_response_bytes",
			Help:    "Size of the response bodies",
			Buckets: prometheus.ExponentialBuckets(256, 4, 8),
		}),
		logger: logger,
	}
	reg.MustRegister(
		m.CPU,
		m.AllocatedMemory,
		m.Requests,
		m.ResponseSize,
	)
	return m
}

// ObserveRequest counts a served request.
func (m *Metrics) ObserveRequest(method string, code int, size int64) {
	m.Requests.WithLabelValues(method, strconv.Itoa(code)).Inc()
	m.ResponseSize.Observe(float64(size))
}

func (m *Metrics) UpdateCPU() {
	p, err := cpu.Percent(0, false)
	if err != nil || len(p) == 0 {
		m.logger.Warn("Failed to read CPU usage", "err", err)
		return
	}
	m.CPU.Set(p[0])
}

func (m *Metrics) UpdateMemory() {
	s := runtime.MemStats{}
	runtime.ReadMemStats(&s)
	m.AllocatedMemory.Set(float64(s.Alloc))
}

// Observe samples CPU and memory every period until ctx is done.
func (m *Metrics) Observe(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.UpdateCPU()
			m.UpdateMemory()
		}
	}
}

// Handler exposes reg in the Prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
