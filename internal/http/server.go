// Package http exposes the ledger as a JSON API.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MoltenSteelStudio/DartsManager/internal/ledger"
)

type Server struct {
	svc  *ledger.Service
	http *http.Server
}

// NewServer builds the router and the underlying http.Server. addr is
// host:port.
func NewServer(addr string, svc *ledger.Service) *Server {
	s := &Server{svc: svc}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/players", s.handleListPlayers)
		r.Post("/players", s.handleAddPlayer)
		r.Delete("/players/{name}", s.handleRemovePlayer)
		r.Get("/players/{name}/settlement", s.handleSettlementPreview)

		r.Get("/venues", s.handleListVenues)
		r.Post("/venues", s.handleAddVenue)

		r.Get("/payments", s.handleListPayments)
		r.Put("/payments", s.handleUpsertPayments)

		r.Get("/expenses", s.handleListExpenses)
		r.Post("/expenses", s.handleAddExpense)

		r.Get("/other-income", s.handleListOtherIncome)
		r.Put("/other-income", s.handleUpsertOtherIncome)

		r.Get("/balance", s.handleBalance)
		r.Get("/matrix/contributions", s.handleContributionMatrix)
		r.Get("/matrix/net", s.handleNetMatrix)

		r.Post("/clear", s.handleClear)
		r.Get("/export/{table}.csv", s.handleExportCSV)
	})

	s.http = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe() error {
	slog.Info("HTTP server listening", "addr", s.http.Addr)
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ready",
		"revision": s.svc.Revision(),
	})
}
