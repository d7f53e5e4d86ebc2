// Package metrics holds the server's prometheus collectors and the optional
// HTTP listener that exposes them.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var Requests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "nearword_server_requests_total",
	Help: "Number of IPC requests handled, by action",
}, []string{"action"})

var RequestErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "nearword_server_request_errors_total",
	Help: "Number of IPC requests answered with an error, by code",
}, []string{"code"})

var CacheHits = promauto.NewCounter(prometheus.CounterOpts{
	Name: "nearword_server_cache_hits_total",
	Help: "Number of lookups answered from the result cache",
})

var CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
	Name: "nearword_server_cache_misses_total",
	Help: "Number of lookups that had to search the index",
})

var LookupDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "nearword_server_lookup_duration_seconds",
	Help:    "Time spent searching the index for one lookup request",
	Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
})

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ListenAndServe exposes /metrics on addr until ctx is done.
func ListenAndServe(ctx context.Context, addr string) error {
	li, err := Listen(ctx, addr)
	if err != nil {
		return err
	}
	return Serve(ctx, li)
}

// Listen binds addr so callers can fail before starting other work.
func Listen(ctx context.Context, addr string) (net.Listener, error) {
	var lc net.ListenConfig
	li, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener on %s: %w", addr, err)
	}
	return li, nil
}

// Serve exposes /metrics on li until ctx is done.
func Serve(ctx context.Context, li net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Warnf("Metrics server shutdown: %v", err)
			}
		case <-done:
		}
	}()
	defer close(done)

	log.Infof("Serving metrics on http://%s/metrics", li.Addr())
	if err := srv.Serve(li); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
