package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"ledgerbot/internal/core"
	"ledgerbot/internal/ledger"
	"ledgerbot/internal/storage/memory"
)

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error {
	return errors.New("disk gone")
}

func newTestServer(t *testing.T) (*Server, *ledger.Store) {
	t.Helper()
	repo := memory.New(nil, core.ParseEntryLine("13-10 (Mon) | Lunch: $10.00"))
	store, err := ledger.Open(context.Background(), repo)
	require.NoError(t, err)
	return NewServer(":0", store, repo, nil), store
}

func TestHealthAndReady(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rr.Code, path)
		require.NotEmpty(t, rr.Header().Get("X-Request-ID"), path)
		require.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	}
}

func TestReadyDoesNotWrite(t *testing.T) {
	repo := memory.New(nil)
	store, err := ledger.Open(context.Background(), repo)
	require.NoError(t, err)
	srv := NewServer(":0", store, repo, nil)

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Zero(t, repo.Writes())
}

func TestReadyFailsWhenStoreUnavailable(t *testing.T) {
	_, store := newTestServer(t)
	srv := NewServer(":0", store, failingPinger{}, nil)

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestLedgerEndpoint(t *testing.T) {
	srv, store := newTestServer(t)
	_, err := store.AddEntry(context.Background(), "Dinner", core.Money{Cents: 1550})
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/ledger", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var got ledgerJSON
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Equal(t, "25.50", got.Total)
	require.Equal(t, []string{"Lunch", "Dinner", "Groceries"}, got.Categories)
	require.Len(t, got.Entries, 2)
	require.Equal(t, entryJSON{Index: 1, Date: "13-10 (Mon)", Category: "Lunch", Amount: "10.00", Line: "13-10 (Mon) | Lunch: $10.00"}, got.Entries[0])
	require.Equal(t, 2, got.Entries[1].Index)
}

func TestLedgerEndpointRejectsWrites(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/ledger", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
