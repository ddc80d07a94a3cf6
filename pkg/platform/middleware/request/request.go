// Package request provides middleware that stamps every request with an id and a
// single request-scoped "now", so logs, audit events and domain timestamps agree.
package request

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"familyhub/pkg/requestcontext"
)

const HeaderRequestID = "X-Request-ID"

const maxRequestIDLength = 128

// RequestID reuses a well-formed inbound X-Request-ID or mints a new one, and echoes
// it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Time captures the current time at the start of the request.
func Time(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
