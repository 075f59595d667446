// Package metrics documents the Prometheus metrics exposed by this module.
// All metrics are defined in their respective packages (client, cache,
// ratelimit) to maintain modularity and avoid circular dependencies.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the module.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - artic_requests_total{endpoint, status} (Counter): Total requests by endpoint and HTTP status
//   - artic_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - artic_errors_total{class} (Counter): Errors by class (client, server, rate_limit, unavailable, network)
//
// Retry Metrics (pkg/client):
//   - artic_retries_total{error_class} (Counter): Retry attempts by error class
//   - artic_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - artic_retry_exhausted_total{error_class} (Counter): Requests that exhausted the retry budget
//
// Cache Metrics (pkg/cache):
//   - artic_cache_hits_total{layer="redis"} (Counter): Response cache hits by layer
//   - artic_cache_misses_total (Counter): Response cache misses
//   - artic_cache_size_bytes{layer="redis"} (Gauge): Cached bytes written
//   - artic_cache_errors_total{operation} (Counter): Cache operation errors
//
// Rate Limit Metrics (pkg/ratelimit):
//   - artic_rate_limit_wait_seconds (Histogram): Time spent waiting for the token bucket
//
// Example Prometheus Queries:
//
//   # Retry Rate
//   rate(artic_retries_total[5m])
//
//   # Cache Hit Rate
//   sum(rate(artic_cache_hits_total[5m])) /
//   (sum(rate(artic_cache_hits_total[5m])) + sum(rate(artic_cache_misses_total[5m])))
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(artic_request_duration_seconds_bucket[5m]))
