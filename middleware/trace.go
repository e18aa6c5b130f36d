package middleware

import (
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Trace resolves the trace id for each request from header, generating one
// when the caller sent none. The id is stored in the request context and
// echoed on the response. The chi request id, when present, is copied into
// the same context so loggers can pick both up.
func Trace(header string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := strings.TrimSpace(r.Header.Get(header))
			if traceID == "" {
				traceID = NewTraceID()
			}

			ctx := WithTraceID(r.Context(), traceID)
			if requestID := chimw.GetReqID(ctx); requestID != "" {
				ctx = WithRequestID(ctx, requestID)
			}

			w.Header().Set(header, traceID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NewTraceID returns a random 128-bit id as 32 lowercase hex characters
func NewTraceID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
