// Package http agrupa la instrumentación compartida por la capa HTTP.
package http

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	metricsOnce sync.Once
	metricsErr  error

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInflight        *prometheus.GaugeVec

	// Auth metrics
	authOutcomesTotal *prometheus.CounterVec
	otpIssuedTotal    *prometheus.CounterVec
)

// MetricsConfig agrupa dependencias necesarias para exponer /metrics.
type MetricsConfig struct {
	Registry prometheus.Registerer
	Gatherer prometheus.Gatherer
	// Pool opcional: expone estadísticas del pool de Postgres.
	Pool func() *pgxpool.Pool
}

// RegisterMetrics inicializa las métricas y devuelve el handler para /metrics.
func RegisterMetrics(cfg MetricsConfig) (http.Handler, error) {
	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	metricsOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Número total de requests procesadas",
		}, []string{"method", "path", "status"})

		httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de los requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})

		httpInflight = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Requests en vuelo por método y ruta",
		}, []string{"method", "path"})

		authOutcomesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_flow_outcomes_total",
			Help: "Resultados de los flujos de autenticación",
		}, []string{"flow", "outcome"})

		otpIssuedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "otp_codes_issued_total",
			Help: "Códigos de un solo uso emitidos por propósito",
		}, []string{"purpose"})

		for _, c := range []prometheus.Collector{
			httpRequestsTotal, httpRequestDuration, httpInflight, authOutcomesTotal, otpIssuedTotal,
		} {
			if err := registerCollector(registry, c); err != nil {
				metricsErr = err
				return
			}
		}
	})
	if metricsErr != nil {
		return nil, metricsErr
	}

	if cfg.Pool != nil {
		if err := registerCollector(registry, newDBPoolCollector(cfg.Pool)); err != nil {
			return nil, err
		}
	}

	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}), nil
}

// WithMetrics instrumenta requests HTTP (contadores, latencia, inflight).
// Sin RegisterMetrics previo no hace nada.
func WithMetrics(next http.Handler) http.Handler {
	if httpRequestsTotal == nil || httpRequestDuration == nil || httpInflight == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method := strings.ToUpper(r.Method)
		inflightPath := normalizePath(r.URL.Path)

		httpInflight.WithLabelValues(method, inflightPath).Inc()
		start := time.Now()

		rec := &statusRecorder{ResponseWriter: w}
		defer func() {
			httpInflight.WithLabelValues(method, inflightPath).Dec()

			pathLabel := inflightPath
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					pathLabel = p
				}
			}
			httpRequestDuration.WithLabelValues(method, pathLabel).Observe(time.Since(start).Seconds())

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			httpRequestsTotal.WithLabelValues(method, pathLabel, strconv.Itoa(status)).Inc()
		}()

		next.ServeHTTP(rec, r)
	})
}

// RecordAuthOutcome cuenta el resultado de un flujo (flow=login, outcome=ok|invalid_credentials|...).
func RecordAuthOutcome(flow, outcome string) {
	if authOutcomesTotal != nil {
		authOutcomesTotal.WithLabelValues(flow, outcome).Inc()
	}
}

// RecordCodeIssued cuenta códigos emitidos.
func RecordCodeIssued(purpose string) {
	if otpIssuedTotal != nil {
		otpIssuedTotal.WithLabelValues(purpose).Inc()
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

// registerCollector registra el collector ignorando duplicados.
func registerCollector(reg prometheus.Registerer, collector prometheus.Collector) error {
	if err := reg.Register(collector); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}

// dbPoolCollector expone gauges del pool de Postgres.
type dbPoolCollector struct {
	pool func() *pgxpool.Pool

	acquiredDesc *prometheus.Desc
	idleDesc     *prometheus.Desc
	totalDesc    *prometheus.Desc
}

func newDBPoolCollector(pool func() *pgxpool.Pool) *dbPoolCollector {
	return &dbPoolCollector{
		pool:         pool,
		acquiredDesc: prometheus.NewDesc("pg_pool_acquired", "Conexiones adquiridas", nil, nil),
		idleDesc:     prometheus.NewDesc("pg_pool_idle", "Conexiones inactivas", nil, nil),
		totalDesc:    prometheus.NewDesc("pg_pool_total", "Conexiones totales", nil, nil),
	}
}

func (c *dbPoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.acquiredDesc
	ch <- c.idleDesc
	ch <- c.totalDesc
}

func (c *dbPoolCollector) Collect(ch chan<- prometheus.Metric) {
	pool := c.pool()
	if pool == nil {
		return
	}
	stat := pool.Stat()
	ch <- prometheus.MustNewConstMetric(c.acquiredDesc, prometheus.GaugeValue, float64(stat.AcquiredConns()))
	ch <- prometheus.MustNewConstMetric(c.idleDesc, prometheus.GaugeValue, float64(stat.IdleConns()))
	ch <- prometheus.MustNewConstMetric(c.totalDesc, prometheus.GaugeValue, float64(stat.TotalConns()))
}

var (
	uuidSegmentRE = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F-]{4}-[0-9a-fA-F-]{4,}$`)
	hexSegmentRE  = regexp.MustCompile(`^[0-9a-fA-F]{16,}$`)
)

// normalizePath colapsa segmentos dinámicos (uuids, ids) para acotar la cardinalidad.
func normalizePath(p string) string {
	var out []string
	for _, seg := range strings.Split(p, "/") {
		if seg == "" {
			continue
		}
		if isDynamicSegment(seg) {
			seg = ":param"
		}
		out = append(out, seg)
	}
	return "/" + strings.Join(out, "/")
}

func isDynamicSegment(seg string) bool {
	if len(seg) > 48 || uuidSegmentRE.MatchString(seg) || hexSegmentRE.MatchString(seg) {
		return true
	}
	_, err := strconv.Atoi(seg)
	return err == nil
}
