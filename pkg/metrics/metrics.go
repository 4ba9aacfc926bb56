// Package metrics provides the centralized Prometheus registry reference
// for the wigle-export pipeline. All metrics are defined in their
// respective packages (client, cache, ratelimit, pagination, export) to
// maintain modularity and avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the pipeline.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - wigle_requests_total{endpoint, status} (Counter): Total requests by endpoint and HTTP status
//   - wigle_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - wigle_errors_total{class} (Counter): Errors by class (auth, client, not_found, server, rate_limit, network)
//
// Retry Metrics (pkg/client):
//   - wigle_retries_total{error_class} (Counter): Retry attempts by error class
//   - wigle_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - wigle_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Rate Limit Metrics (pkg/ratelimit):
//   - wigle_rate_limit_throttles_total (Counter): Requests delayed by the local limiter
//   - wigle_rate_limit_wait_seconds (Histogram): Time spent waiting on the limiter
//
// Cache Metrics (pkg/cache):
//   - wigle_cache_hits_total{layer="redis"} (Counter): Cache hits by layer
//   - wigle_cache_misses_total (Counter): Cache misses
//   - wigle_cache_errors_total{operation} (Counter): Cache operation errors
//
// Pagination Metrics (pkg/pagination):
//   - wigle_pages_fetched_total (Counter): Search pages fetched successfully
//   - wigle_records_fetched_total (Counter): Records fetched across all pages
//   - wigle_cursor_stalls_total (Counter): Fetches terminated by the stall guard
//
// Export Metrics (internal/export):
//   - wigle_exports_total{format} (Counter): Export artifacts written by format
//   - wigle_export_rows_total{format} (Counter): Rows/placemarks written by format
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(wigle_cache_hits_total[5m])) /
//   (sum(rate(wigle_cache_hits_total[5m])) + sum(rate(wigle_cache_misses_total[5m])))
//
//   # Request Error Rate
//   rate(wigle_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(wigle_request_duration_seconds_bucket[5m]))
