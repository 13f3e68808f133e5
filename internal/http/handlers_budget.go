package http

import (
	"net/http"

	"cashflow/internal/core"
	"cashflow/internal/log"

	"github.com/gorilla/mux"
)

type budgetInput struct {
	Category  string     `json:"category"`
	StartDate core.Date  `json:"startDate"`
	EndDate   core.Date  `json:"endDate"`
	Limit     core.Money `json:"limit"`
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var in budgetInput
	if err := DecodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err, log.ComponentBudget, log.OpCreate)
		return
	}
	b, err := s.svc.Budgets.Create(r.Context(), userID(r), core.Budget{
		Category:  sanitizeInput(in.Category),
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		Limit:     in.Limit,
	})
	if err != nil {
		s.writeError(w, r, err, log.ComponentBudget, log.OpCreate)
		return
	}
	Created("Budget added successfully", b).Write(w)
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.svc.Budgets.List(r.Context(), userID(r))
	if err != nil {
		s.writeError(w, r, err, log.ComponentBudget, log.OpList)
		return
	}
	NewJSONResponse().Data(budgets).Write(w)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	var patch core.BudgetPatch
	if err := DecodeJSON(w, r, &patch); err != nil {
		s.writeError(w, r, err, log.ComponentBudget, log.OpUpdate)
		return
	}
	if patch.Category != nil {
		c := sanitizeInput(*patch.Category)
		patch.Category = &c
	}
	b, err := s.svc.Budgets.Update(r.Context(), userID(r), mux.Vars(r)["id"], patch)
	if err != nil {
		s.writeError(w, r, err, log.ComponentBudget, log.OpUpdate)
		return
	}
	NewJSONResponse().Message("Budget updated successfully").Data(b).Write(w)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Budgets.Delete(r.Context(), userID(r), mux.Vars(r)["id"]); err != nil {
		s.writeError(w, r, err, log.ComponentBudget, log.OpDelete)
		return
	}
	NewJSONResponse().Message("Budget deleted successfully").Write(w)
}

func (s *Server) handleBudgetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.svc.Budgets.Summary(r.Context(), userID(r))
	if err != nil {
		s.writeError(w, r, err, log.ComponentBudget, "summary")
		return
	}
	NewJSONResponse().Data(summary).Write(w)
}
