package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vstrecha/vstrecha/backend/pkg/logger/types"
)

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Friendships counts friendship changes by operation (create, delete).
	Friendships = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vstrecha_friendships_total",
			Help: "Friendship edges created and deleted.",
		},
		[]string{"op"},
	)

	// Participations counts join and leave outcomes by result kind.
	Participations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vstrecha_participations_total",
			Help: "Join and leave attempts by operation and outcome.",
		},
		[]string{"op", "outcome"},
	)

	AttendanceScans = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vstrecha_attendance_scans_total",
		Help: "Recorded attendance scans.",
	})

	logEntries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vstrecha_log_entries_total",
			Help: "Log entries by logger and level.",
		},
		[]string{"logger", "level"},
	)

	once sync.Once
)

// Init registers the collectors in the default registry. It is safe to call more than once.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			httpInFlight, httpRequestsTotal, httpRequestDuration,
			Friendships, Participations, AttendanceScans, logEntries,
		)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// LogHook feeds the log entry counter. Install it with logger.SetLogHook.
func LogHook(log types.Log) {
	logEntries.WithLabelValues(log.LoggerName, log.Level.String()).Inc()
}

// Instrument measures requests of one route. route is the mux pattern, so
// path parameters do not explode label cardinality.
func Instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(sw.code)).Inc()
	})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
