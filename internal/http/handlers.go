package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MoltenSteelStudio/DartsManager/internal/core"
	"github.com/MoltenSteelStudio/DartsManager/internal/export"
)

func (s *Server) handleListPlayers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Players())
}

func (s *Server) handleAddPlayer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.svc.AddPlayer(r.Context(), req.Name); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.svc.Players())
}

func (s *Server) handleRemovePlayer(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.RemovePlayer(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSettlementPreview(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.SettlementPreview(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListVenues(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Venues())
}

func (s *Server) handleAddVenue(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Date string `json:"date"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.svc.AddVenue(r.Context(), req.Name, req.Date); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.svc.Venues())
}

func (s *Server) handleListPayments(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Payments())
}

func (s *Server) handleUpsertPayments(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string          `json:"name"`
		Venue      string          `json:"venue"`
		Date       string          `json:"date"`
		Categories []core.Category `json:"categories"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.svc.UpsertPayments(r.Context(), req.Name, req.Venue, req.Date, req.Categories); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Payments())
}

func (s *Server) handleListExpenses(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Expenses())
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Venue       string     `json:"venue"`
		Date        string     `json:"date"`
		Amount      core.Money `json:"amount"`
		Description string     `json:"description"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.svc.AddExpense(r.Context(), req.Venue, req.Date, req.Amount, req.Description); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.svc.Expenses())
}

func (s *Server) handleListOtherIncome(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.OtherIncome())
}

func (s *Server) handleUpsertOtherIncome(w http.ResponseWriter, r *http.Request) {
	var req core.OtherIncome
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.svc.UpsertOtherIncome(r.Context(), req); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.svc.OtherIncome())
}

func (s *Server) handleBalance(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Balance())
}

func (s *Server) handleContributionMatrix(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.ContributionMatrix())
}

func (s *Server) handleNetMatrix(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.NetMatrix())
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Table string `json:"table"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	var err error
	if req.Table == "all" {
		err = s.svc.ClearAll(r.Context())
	} else {
		err = s.svc.ClearTable(r.Context(), req.Table)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"cleared": req.Table})
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	name, ok := export.Filenames[table]
	if !ok {
		writeError(w, core.ErrUnknownTable)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if err := export.WriteTable(w, table, s.svc.Snapshot()); err != nil {
		slog.ErrorContext(r.Context(), "Failed to stream CSV export", "table", table, "error", err)
	}
}
