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
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	TestSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "course_test_submissions_total",
			Help: "Test submissions by outcome",
		},
		[]string{"outcome"},
	)

	GradeRecomputations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "course_grade_recomputations_total",
			Help: "Profile grade recomputations by result",
		},
		[]string{"result"},
	)

	CertificatesIssued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "course_certificates_issued_total",
			Help: "Certificates issued",
		},
	)

	AccessGrants = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "course_access_grants_total",
			Help: "Course access rows granted from completed checkouts",
		},
	)
)

var registerOnce sync.Once

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			TestSubmissions,
			GradeRecomputations,
			CertificatesIssued,
			AccessGrants,
		)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// ObserveSubmission records a test submission.
func ObserveSubmission(passed bool) {
	if passed {
		TestSubmissions.WithLabelValues("passed").Inc()
		return
	}
	TestSubmissions.WithLabelValues("failed").Inc()
}

// ObserveRecompute records a profile recompute and its cache write result.
func ObserveRecompute(err error) {
	if err != nil {
		GradeRecomputations.WithLabelValues("error").Inc()
		return
	}
	GradeRecomputations.WithLabelValues("ok").Inc()
}
