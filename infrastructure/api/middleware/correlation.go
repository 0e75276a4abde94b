package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/helixml/briefer/internal/log"
)

// HeaderCorrelationID carries the correlation ID on requests and responses.
const HeaderCorrelationID = "X-Correlation-ID"

// CorrelationID adds a correlation ID to the request context, taken from the
// X-Correlation-ID header or, failing that, chi's request ID.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderCorrelationID)
		if id == "" {
			id = middleware.GetReqID(r.Context())
		}
		if id != "" {
			w.Header().Set(HeaderCorrelationID, id)
		}

		ctx := log.WithCorrelationID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetCorrelationID retrieves the correlation ID from the context.
func GetCorrelationID(ctx context.Context) string {
	return log.CorrelationID(ctx)
}
