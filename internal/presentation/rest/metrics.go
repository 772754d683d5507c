package rest

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsMiddleware counts requests per route, method and status.
func MetricsMiddleware(meter metric.Meter) (mux.MiddlewareFunc, error) {
	requests, err := meter.Int64Counter("http_requests_total",
		metric.WithDescription("Number of HTTP requests handled."),
	)
	if err != nil {
		return nil, err
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			route := r.URL.Path
			if current := mux.CurrentRoute(r); current != nil {
				if tpl, tplErr := current.GetPathTemplate(); tplErr == nil {
					route = tpl
				}
			}
			requests.Add(r.Context(), 1,
				metric.WithAttributes(
					attribute.String("route", route),
					attribute.String("method", r.Method),
					attribute.String("status", strconv.Itoa(sw.status)),
				),
			)
		})
	}, nil
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
