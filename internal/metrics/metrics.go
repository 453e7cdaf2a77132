// Package metrics экспортирует статистику тиков в Prometheus.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/annel0/automata/internal/engine"
	"github.com/annel0/automata/internal/logging"
)

const namespace = "automata"

// TickMetrics реализует engine.Recorder поверх Prometheus-метрик
type TickMetrics struct {
	duration   prometheus.Histogram
	changed    prometheus.Counter
	skipped    prometheus.Counter
	failures   prometheus.Counter
	generation prometheus.Gauge
	workers    prometheus.Gauge
}

var _ engine.Recorder = (*TickMetrics)(nil)

// NewTickMetrics создаёт метрики и регистрирует их в reg
func NewTickMetrics(reg prometheus.Registerer) (*TickMetrics, error) {
	m := &TickMetrics{
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Длительность тика: снимок, вычисление и применение изменений.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 16),
		}),
		changed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cells_changed_total",
			Help:      "Общее число клеток, изменивших состояние.",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cells_skipped_total",
			Help:      "Клеток, не вычисленных из-за остатка при делении на отрезки.",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tick_failures_total",
			Help:      "Тиков, завершившихся ошибкой воркера.",
		}),
		generation: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "generation",
			Help:      "Номер текущего поколения.",
		}),
		workers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tick_workers",
			Help:      "Количество воркеров в последнем тике.",
		}),
	}

	for _, c := range []prometheus.Collector{m.duration, m.changed, m.skipped, m.failures, m.generation, m.workers} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveTick учитывает успешный тик
func (m *TickMetrics) ObserveTick(res engine.TickResult) {
	m.duration.Observe(res.Duration.Seconds())
	m.changed.Add(float64(len(res.Diff)))
	m.skipped.Add(float64(res.Skipped))
	m.generation.Set(float64(res.Generation))
	m.workers.Set(float64(res.Workers))
}

// ObserveFailure учитывает упавший тик
func (m *TickMetrics) ObserveFailure() {
	m.failures.Inc()
}

// Server HTTP-эндпоинт /metrics
type Server struct {
	srv *http.Server
}

// Serve запускает HTTP-эндпоинт Prometheus на addr (например, ":2112").
// Метод неблокирующий: HTTP-сервер стартует в отдельной горутине.
func Serve(addr string, g prometheus.Gatherer) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	s := &Server{srv: &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}}

	go func() {
		logging.Info("📈 Prometheus /metrics доступен по адресу %s", addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Ошибка Prometheus HTTP сервера: %v", err)
		}
	}()
	return s
}

// Close останавливает HTTP-сервер
func (s *Server) Close() error {
	return s.srv.Close()
}
