package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MoltenSteelStudio/DartsManager/internal/core"
	"github.com/MoltenSteelStudio/DartsManager/internal/ledger"
	"github.com/MoltenSteelStudio/DartsManager/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	svc, err := ledger.New(context.Background(), storage.NewMemoryStore(), nil)
	require.NoError(t, err)
	return NewServer("127.0.0.1:0", svc)
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestPlayerLifecycle(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/players", `{"name":"Alice"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/players", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var players []core.Player
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &players))
	require.Equal(t, []core.Player{{Name: "Alice"}}, players)

	rec = doJSON(t, srv, http.MethodPost, "/api/players", `{"name":"Alice"}`)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/players", `{"name":"  "}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "error")
}

func TestFullMatchFlow(t *testing.T) {
	srv := newTestServer(t)

	for _, step := range []struct {
		method, path, body string
		want               int
	}{
		{http.MethodPost, "/api/players", `{"name":"Alice"}`, http.StatusCreated},
		{http.MethodPost, "/api/players", `{"name":"Bob"}`, http.StatusCreated},
		{http.MethodPost, "/api/venues", `{"name":"Pub A","date":"01-01-2024"}`, http.StatusCreated},
		{http.MethodPut, "/api/payments", `{"name":"Alice","venue":"Pub A","date":"01-01-2024","categories":["Subs","Raffle"]}`, http.StatusOK},
		{http.MethodPut, "/api/payments", `{"name":"Bob","venue":"Pub A","date":"01-01-2024","categories":["Food"]}`, http.StatusOK},
		{http.MethodPost, "/api/expenses", `{"venue":"Pub A","date":"01-01-2024","amount":"1.50","description":"Board fee"}`, http.StatusCreated},
		{http.MethodPut, "/api/other-income", `{"venue":"Pub A","date":"01-01-2024","raffle_income":"3.00","fines":"0.00"}`, http.StatusOK},
	} {
		rec := doJSON(t, srv, step.method, step.path, step.body)
		require.Equal(t, step.want, rec.Code, "%s %s: %s", step.method, step.path, rec.Body.String())
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/balance", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var balance []core.BalanceRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &balance))
	require.Len(t, balance, 1)
	require.Equal(t, core.Money(550), balance[0].Net)

	// Settlement preview leaves the roster untouched.
	rec = doJSON(t, srv, http.MethodGet, "/api/players/Alice/settlement", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"per_remaining_value":"5.50"`)

	// Removing Alice returns the advisory and shrinks the roster.
	rec = doJSON(t, srv, http.MethodDelete, "/api/players/Alice", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"total_contributed":"3.00"`)

	rec = doJSON(t, srv, http.MethodGet, "/api/players", "")
	var players []core.Player
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &players))
	require.Equal(t, []core.Player{{Name: "Bob"}}, players)
}

func TestUnknownPlayerIs404(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodDelete, "/api/players/Nobody", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/players/Nobody/settlement", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPaymentValidationErrors(t *testing.T) {
	srv := newTestServer(t)
	doJSON(t, srv, http.MethodPost, "/api/players", `{"name":"Alice"}`)

	rec := doJSON(t, srv, http.MethodPut, "/api/payments",
		`{"name":"Alice","venue":"Pub A","date":"01-01-2024","categories":["Bingo"]}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(t, srv, http.MethodPut, "/api/payments",
		`{"name":"Alice","venue":"Pub A","date":"not-a-date","categories":["Subs"]}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(t, srv, http.MethodPut, "/api/payments", `{"bogus":true}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClearEndpoints(t *testing.T) {
	srv := newTestServer(t)
	doJSON(t, srv, http.MethodPost, "/api/players", `{"name":"Alice"}`)

	rec := doJSON(t, srv, http.MethodPost, "/api/clear", `{"table":"players"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/players", "")
	require.Equal(t, "[]\n", rec.Body.String())

	rec = doJSON(t, srv, http.MethodPost, "/api/clear", `{"table":"bogus"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/clear", `{"table":"all"}`)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestExportCSVEndpoint(t *testing.T) {
	srv := newTestServer(t)
	doJSON(t, srv, http.MethodPost, "/api/players", `{"name":"Alice"}`)

	rec := doJSON(t, srv, http.MethodGet, "/api/export/players.csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	require.Equal(t, "Name\nAlice\n", rec.Body.String())

	rec = doJSON(t, srv, http.MethodGet, "/api/export/bogus.csv", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/readyz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "revision")
}

func TestRequestIDHeader(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/healthz", "")
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "test-id-1")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, "test-id-1", rec.Header().Get("X-Request-ID"))
}
