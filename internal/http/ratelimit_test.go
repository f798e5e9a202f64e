package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLimiterPerClient(t *testing.T) {
	l := newLimiter(2)

	require.True(t, l.allow("10.0.0.1"))
	require.True(t, l.allow("10.0.0.1"))
	require.False(t, l.allow("10.0.0.1"))
	require.True(t, l.allow("10.0.0.2"))
}

func TestLimiterMiddleware(t *testing.T) {
	h := newLimiter(1).middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/ledger", nil)
	req.RemoteAddr = "192.0.2.7:5555"

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	require.Equal(t, "60", rr.Header().Get("Retry-After"))
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:5555"
	require.Equal(t, "192.0.2.7", clientIP(req))

	req.RemoteAddr = "unix"
	require.Equal(t, "unix", clientIP(req))
}
