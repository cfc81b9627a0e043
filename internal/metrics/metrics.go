package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector exposes Prometheus metrics for inbound HTTP requests and for
// the valuation pipeline.
type Collector struct {
	registry        *prometheus.Registry
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	estimateTotal   *prometheus.CounterVec
	compsUsed       *prometheus.HistogramVec
}

// NewCollector constructs a collector with default histograms/counters.
func NewCollector() (*Collector, error) {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "deckworth",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency distribution for inbound HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "deckworth",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of inbound HTTP requests.",
	}, []string{"method", "path", "status"})

	estimateTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "deckworth",
		Subsystem: "valuation",
		Name:      "estimates_total",
		Help:      "Total number of completed estimates.",
	}, []string{"confidence", "generation_status"})

	compsUsed := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "deckworth",
		Subsystem: "valuation",
		Name:      "comparables_used",
		Help:      "Distribution of comparable counts backing each estimate.",
		Buckets:   []float64{0, 1, 2, 3, 4, 5, 6, 7, 8},
	}, []string{"source"})

	collectors := []prometheus.Collector{requestDuration, requestTotal, estimateTotal, compsUsed}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return &Collector{
		registry:        registry,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		estimateTotal:   estimateTotal,
		compsUsed:       compsUsed,
	}, nil
}

// Handler returns an HTTP handler for exposing Prometheus metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler to record HTTP metrics.
func (c *Collector) InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.status)
		path := r.URL.Path

		c.requestTotal.WithLabelValues(r.Method, path, status).Inc()
		c.requestDuration.WithLabelValues(r.Method, path, status).Observe(duration)
	})
}

// RecordEstimate counts a completed estimate by confidence label and
// generation status, and records how many comparables backed it.
func (c *Collector) RecordEstimate(confidence, generationStatus string, realComps, syntheticComps int) {
	c.estimateTotal.WithLabelValues(confidence, generationStatus).Inc()
	c.compsUsed.WithLabelValues("listing").Observe(float64(realComps))
	c.compsUsed.WithLabelValues("synthetic").Observe(float64(syntheticComps))
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
