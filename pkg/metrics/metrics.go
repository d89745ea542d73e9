// Package metrics documents the Prometheus metrics of the domains client and
// serves them over HTTP. The metrics themselves are defined in their
// packages (pagination, client, cache, ratelimit) via promauto.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Registry is the default Prometheus registry used by the domains client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Handler exposes the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve exposes Handler on addr under /metrics until ctx is done.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("component", "metrics").Str("addr", addr).Msg("Serving metrics")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Metrics Documentation
//
// Pagination Metrics (pkg/pagination):
//   - domains_pages_fetched_total{operation} (Counter): Pages received by list operation
//   - domains_items_emitted_total{operation} (Counter): Items delivered to sinks
//   - domains_pagination_faults_total{operation} (Counter): Enumerations ended by a fault
//   - domains_pagination_duration_seconds{operation} (Histogram): Duration of whole enumerations
//
// Throttle Metrics (pkg/ratelimit):
//   - domains_throttle_remaining (Gauge): Requests remaining in the current throttle window
//   - domains_throttle_blocks_total (Counter): Requests blocked in critical state
//   - domains_throttle_delays_total (Counter): Requests delayed in warning state
//
// Cache Metrics (pkg/cache):
//   - domains_cache_hits_total{layer="redis"} (Counter): Cache hits by layer
//   - domains_cache_misses_total (Counter): Cache misses
//   - domains_cache_size_bytes{layer="redis"} (Gauge): Current cache size in bytes
//   - domains_cache_errors_total{operation} (Counter): Cache operation errors
//
// Request Metrics (pkg/client):
//   - domains_requests_total{operation, status} (Counter): Calls by operation and HTTP status
//     (plus "blocked", "cached" and "network_error")
//   - domains_request_duration_seconds{operation} (Histogram): Call duration by operation
//   - domains_errors_total{class} (Counter): Errors by class (client, server, throttling, network)
//
// Retry Metrics (pkg/client):
//   - domains_retries_total{error_class} (Counter): Retry attempts by error class
//   - domains_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - domains_retry_exhausted_total{error_class} (Counter): Calls that exhausted max attempts
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(domains_cache_hits_total[5m])) /
//   (sum(rate(domains_cache_hits_total[5m])) + sum(rate(domains_cache_misses_total[5m])))
//
//   # Throttle Status
//   domains_throttle_remaining < 20
//
//   # Average Page Fill
//   rate(domains_items_emitted_total[5m]) / rate(domains_pages_fetched_total[5m])
//
//   # P95 Call Latency
//   histogram_quantile(0.95, rate(domains_request_duration_seconds_bucket[5m]))
