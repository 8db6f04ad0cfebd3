package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// StreakTransitions counts recorded completions by what they did to the streak.
	StreakTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solveit_streak_transitions_total",
			Help: "Streak updates by transition (started, extended, reset, unchanged, duplicate)",
		},
		[]string{"transition"},
	)

	SweepResets = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "solveit_sweep_resets_total",
			Help: "Streaks zeroed by the daily reset sweep",
		},
	)

	SweepRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solveit_sweep_runs_total",
			Help: "Daily reset sweep runs by outcome",
		},
		[]string{"outcome"},
	)

	IngestedQuestions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "solveit_ingested_questions_total",
			Help: "Questions upserted by catalog ingestion",
		},
	)
)

var registerOnce sync.Once

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(StreakTransitions)
		prometheus.MustRegister(SweepResets)
		prometheus.MustRegister(SweepRuns)
		prometheus.MustRegister(IngestedQuestions)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		RequestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
