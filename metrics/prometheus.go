package metrics

import (
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// all metrics and middlewares for the REST API and the ledger relay
var (
	// to prevent metrics from being initialized multiple times
	isMetricsInitVar uint32 = 0

	// active REST API connections
	activeRESTConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_rest_connections",
			Help: "Number of active REST API connections",
		},
	)

	// response times for REST APIs
	responseTimeRESTAPI = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "restapi_response_time_milliseconds",
			Help:    "REST API response time distributions",
			Buckets: []float64{1, 10, 50, 100, 200, 500, 1000, 5000, 30000},
		},
		[]string{"method", "endpoint"},
	)

	requestSizeRESTAPI = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "restapi_request_size_kilobytes",
			Help:    "REST API request size distributions",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	responseSizeRESTAPI = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "restapi_response_size_kilobytes",
			Help:    "REST API response size distributions",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 50},
		},
		[]string{"method", "endpoint"},
	)

	// Number of requests processed by REST API
	RESTRequestMetricsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rest_requests_processed_total",
		Help: "The total number of processed REST requests",
	}, []string{"method", "endpoint"})

	// Ledger relay submissions by kind (identity, feature, message) and outcome (confirmed, failed, rejected)
	RelaySubmissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_relay_submissions_total",
		Help: "The total number of sponsored ledger transactions",
	}, []string{"kind", "outcome"})

	// Time from submission to confirmation
	RelayConfirmationLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledger_relay_confirmation_latency_milliseconds",
		Help:    "Latency of ledger submission and confirmation",
		Buckets: prometheus.ExponentialBuckets(250, 2, 9),
	}, []string{"kind"})

	// Number of requests rejected as signature replays
	ReplayRejectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "replay_rejections_total",
		Help: "The total number of rejected replayed signatures",
	})

	// Number of features unlocked (by feature name)
	FeatureUnlocksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "feature_unlocks_total",
		Help: "The total number of feature verifications recorded",
	}, []string{"feature"})

	// Number of login attempts by outcome (success, invalid_signature, not_found, invalid_challenge)
	LoginAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "login_attempts_total",
		Help: "The total number of login attempts",
	}, []string{"outcome"})
)

func setIsMetricsInit() {
	atomic.StoreUint32(&isMetricsInitVar, 1)
}

func isMetricsInit() bool {
	return atomic.LoadUint32(&isMetricsInitVar) == 1
}

func InitMetrics() {
	if !isMetricsInit() {
		setIsMetricsInit()

		// Metrics have to be registered to be exposed
		prometheus.MustRegister(activeRESTConnections)
		prometheus.MustRegister(responseTimeRESTAPI)
		prometheus.MustRegister(RESTRequestMetricsTotal)
		prometheus.MustRegister(requestSizeRESTAPI)
		prometheus.MustRegister(responseSizeRESTAPI)
		prometheus.MustRegister(RelaySubmissionsTotal)
		prometheus.MustRegister(RelayConfirmationLatency)
		prometheus.MustRegister(ReplayRejectionsTotal)
		prometheus.MustRegister(FeatureUnlocksTotal)
		prometheus.MustRegister(LoginAttemptsTotal)
	}
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// FullPath keeps the label set bounded (/api/messages/:publicKey)
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		RESTRequestMetricsTotal.WithLabelValues(c.Request.Method, endpoint).Inc()

		r := c.Request
		w := c.Writer
		start := time.Now()

		activeRESTConnections.Inc()
		defer activeRESTConnections.Dec()

		c.Next()

		if r.ContentLength > 0 {
			requestSizeRESTAPI.WithLabelValues(r.Method, endpoint).Observe(float64(r.ContentLength) / 1024)
		}
		if w.Size() > 0 {
			responseSizeRESTAPI.WithLabelValues(r.Method, endpoint).Observe(float64(w.Size()) / 1024)
		}

		latency := time.Since(start)
		responseTimeRESTAPI.WithLabelValues(r.Method, endpoint).Observe(float64(latency.Milliseconds()))
	}
}
