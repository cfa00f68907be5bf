package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"biketowork/metrics"
)

// Metrics records request counts and latencies labelled by route template
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		metrics.HttpRequestsInFlight.Inc()
		defer metrics.HttpRequestsInFlight.Dec()

		rw := newStatusRecorder(w)
		next.ServeHTTP(rw, r)

		metrics.RecordHTTPMetrics(r.Method, routeTemplate(r), rw.status, time.Since(start))
	})
}

func routeTemplate(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return "unmatched"
	}
	template, err := route.GetPathTemplate()
	if err != nil {
		return "unmatched"
	}
	return template
}
