// Package http serves the bot's operational endpoints: liveness, readiness
// and a read-only JSON view of the open ledger.
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"ledgerbot/internal/core"
	"ledgerbot/internal/ledger"
	applog "ledgerbot/internal/log"
)

// LedgerReader exposes the current ledger state.
type LedgerReader interface {
	Snapshot(ctx context.Context) ledger.State
}

// Pinger is checked by /readyz; any ledger.Repository qualifies. Ping must
// not write, since readiness runs outside the ledger's lock.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	http.Server
	ledger LedgerReader
	store  Pinger
	logger *applog.Logger
}

const readyTimeout = 3 * time.Second

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, lr LedgerReader, store Pinger, logger *applog.Logger) *Server {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           applog.Middleware(logger)(withSecurityHeaders(mux)),
			ReadHeaderTimeout: 5 * time.Second,
		},
		ledger: lr,
		store:  store,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /api/ledger", newLimiter(defaultRequestsPerMinute).middleware(http.HandlerFunc(s.handleLedger)))

	return s
}

// withSecurityHeaders adds security headers to every response
func withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		applog.FromContext(r.Context()).WarnContext(ctx, "Readiness check failed", applog.FieldError, err)
		http.Error(w, "ledger unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

type entryJSON struct {
	Index    int    `json:"index"`
	Date     string `json:"date,omitempty"`
	Category string `json:"category"`
	Amount   string `json:"amount"`
	Line     string `json:"line"`
}

type ledgerJSON struct {
	Entries    []entryJSON `json:"entries"`
	Categories []string    `json:"categories"`
	Total      string      `json:"total"`
}

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, toLedgerJSON(s.ledger.Snapshot(r.Context())))
}

func toLedgerJSON(st ledger.State) ledgerJSON {
	out := ledgerJSON{
		Entries:    make([]entryJSON, 0, len(st.Entries)),
		Categories: append([]string{}, st.Categories...),
		Total:      st.Total.String(),
	}
	for i, e := range st.Entries {
		out.Entries = append(out.Entries, toEntryJSON(i+1, e))
	}
	return out
}

func toEntryJSON(index int, e core.Entry) entryJSON {
	return entryJSON{
		Index:    index,
		Date:     e.DateLabel,
		Category: e.Category,
		Amount:   e.Amount.String(),
		Line:     e.Line(),
	}
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		applog.FromContext(ctx).ErrorContext(ctx, "Failed to encode response", applog.FieldError, err)
	}
}
