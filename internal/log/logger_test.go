package log

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newBufferLogger(buf *bytes.Buffer) *Logger {
	return New(Config{
		Component: ComponentApp,
		Handler:   slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	})
}

func TestComponentLoggedOnce(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf).WithComponent(ComponentLedger)

	logger.Info("Entry added", FieldCategory, "Lunch")

	out := buf.String()
	require.Equal(t, 1, strings.Count(out, "component="))
	require.Contains(t, out, "component=ledger")
	require.Contains(t, out, "category=Lunch")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		require.Equal(t, want, ParseLevel(in), in)
	}
}

func TestFieldsBuilder(t *testing.T) {
	fields := NewFields().
		WithComponent(ComponentBot).
		WithChat(42, "private").
		WithEntry("Lunch", "10.00", "25.50").
		ToSlice()

	got := map[string]any{}
	for i := 0; i+1 < len(fields); i += 2 {
		got[fields[i].(string)] = fields[i+1]
	}
	require.Equal(t, ComponentBot, got[FieldComponent])
	require.Equal(t, int64(42), got[FieldChatID])
	require.Equal(t, "10.00", got[FieldAmount])
	require.Equal(t, "25.50", got[FieldTotal])
}

func TestMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	var fromCtx *Logger
	h := Middleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = FromContext(r.Context())
		w.WriteHeader(http.StatusNotFound)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/missing", nil))

	require.Equal(t, http.StatusNotFound, rr.Code)
	id := rr.Header().Get("X-Request-ID")
	require.True(t, strings.HasPrefix(id, "req_"))
	require.NotNil(t, fromCtx)

	out := buf.String()
	require.Contains(t, out, "level=WARN")
	require.Contains(t, out, "request_id="+id)
	require.Contains(t, out, "path=/missing")
}

func TestFromContextFallback(t *testing.T) {
	logger := FromContext(context.Background())
	require.NotNil(t, logger)
	require.Equal(t, "unknown", logger.Component())
}
