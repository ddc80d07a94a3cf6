package request

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"familyhub/pkg/requestcontext"
)

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestcontext.RequestID(r.Context())
	}))

	t.Run("inbound id is reused", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderRequestID, "abc-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, "abc-123", seen)
		assert.Equal(t, "abc-123", rec.Header().Get(HeaderRequestID))
	})

	t.Run("missing or oversized id is replaced", func(t *testing.T) {
		for _, inbound := range []string{"", strings.Repeat("x", maxRequestIDLength+1)} {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(HeaderRequestID, inbound)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.NotEmpty(t, seen)
			assert.NotEqual(t, inbound, seen)
			assert.Equal(t, seen, rec.Header().Get(HeaderRequestID))
		}
	})
}

func TestTime(t *testing.T) {
	var first, second time.Time
	h := Time(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		first = requestcontext.Now(r.Context())
		time.Sleep(time.Millisecond)
		second = requestcontext.Now(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.False(t, first.IsZero())
	assert.Equal(t, first, second)
}
