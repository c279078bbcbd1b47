package middleware

import (
	"net/http"
	"time"

	"mercator-hq/feedback/pkg/telemetry/metrics"
)

// InstrumentRoute records request count and latency for one route. The
// route label is the registered mux pattern, so unbounded path values never
// reach the metric labels.
//
//	mux.Handle("POST /api/analyze", InstrumentRoute("POST /api/analyze", collector)(h))
func InstrumentRoute(route string, collector *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if collector == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseWriter(w)

			next.ServeHTTP(rw, r)

			collector.RecordHTTPRequest(route, rw.statusCode, time.Since(start))
		})
	}
}
