package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	clientRequestsTotal  *prometheus.CounterVec
	clientLatencySeconds *prometheus.HistogramVec
	clientRetriesTotal   *prometheus.CounterVec
	uploadBytesTotal     prometheus.Counter
	validationRejections *prometheus.CounterVec
	cacheLookupsTotal    *prometheus.CounterVec
	callbackRequests     *prometheus.CounterVec
	callbackLatency      *prometheus.HistogramVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API client.
func RegisterMetrics() {
	registerOnce.Do(func() {
		clientRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "codemission",
			Name:      "client_requests_total",
			Help:      "Total number of requests sent to the analysis backend.",
		}, []string{"method", "route", "status"})

		clientLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "codemission",
			Name:      "client_request_duration_seconds",
			Help:      "Latency distribution for requests sent to the analysis backend.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"method", "route"})

		clientRetriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "codemission",
			Name:      "client_retries_total",
			Help:      "Number of retried backend calls.",
		}, []string{"operation"})

		uploadBytesTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "codemission",
			Name:      "client_upload_bytes_total",
			Help:      "Bytes of project archives streamed to the backend.",
		})

		validationRejections = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "codemission",
			Name:      "client_validation_rejections_total",
			Help:      "Uploads and forms rejected before any request was sent.",
		}, []string{"reason"})

		cacheLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "codemission",
			Name:      "client_cache_lookups_total",
			Help:      "Aggregate cache lookups by outcome.",
		}, []string{"outcome"})

		callbackRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "codemission",
			Name:      "oauth_callback_requests_total",
			Help:      "Requests served by the local OAuth callback receiver.",
		}, []string{"route", "status"})

		callbackLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "codemission",
			Name:      "oauth_callback_duration_seconds",
			Help:      "Latency of the local OAuth callback receiver, including the user lookup.",
			Buckets:   []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"route"})

		prometheus.MustRegister(
			clientRequestsTotal,
			clientLatencySeconds,
			clientRetriesTotal,
			uploadBytesTotal,
			validationRejections,
			cacheLookupsTotal,
			callbackRequests,
			callbackLatency,
		)
	})
}

// ClientRequests exposes the counter for backend requests.
func ClientRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return clientRequestsTotal
}

// ClientLatency exposes the latency histogram for backend requests.
func ClientLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return clientLatencySeconds
}

// ClientRetries exposes the retry counter.
func ClientRetries() *prometheus.CounterVec {
	RegisterMetrics()
	return clientRetriesTotal
}

// UploadBytes exposes the uploaded bytes counter.
func UploadBytes() prometheus.Counter {
	RegisterMetrics()
	return uploadBytesTotal
}

// ValidationRejections exposes the client-side rejection counter.
func ValidationRejections() *prometheus.CounterVec {
	RegisterMetrics()
	return validationRejections
}

// CacheLookups exposes the aggregate cache hit/miss counter.
func CacheLookups() *prometheus.CounterVec {
	RegisterMetrics()
	return cacheLookupsTotal
}

// CallbackRequests exposes the counter for OAuth callback requests.
func CallbackRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return callbackRequests
}

// CallbackLatency exposes the histogram for OAuth callback latency.
func CallbackLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return callbackLatency
}
