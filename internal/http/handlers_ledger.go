package http

import (
	"net/http"

	"cashflow/internal/core"
	"cashflow/internal/log"
	"cashflow/internal/services"

	"github.com/gorilla/mux"
)

type transactionInput struct {
	Amount      core.Money `json:"amount"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	Date        core.Date  `json:"date"`
}

// ledgerHandlers serves one ledger. Income and expense share every
// handler and differ only in the service and the label in messages.
type ledgerHandlers struct {
	s     *Server
	svc   *services.LedgerService
	label string
}

func newLedgerHandlers(s *Server, svc *services.LedgerService, label string) *ledgerHandlers {
	return &ledgerHandlers{s: s, svc: svc, label: label}
}

func (h *ledgerHandlers) fail(w http.ResponseWriter, r *http.Request, err error, op string) {
	h.s.writeError(w, r, err, log.ComponentLedger, op)
}

func (h *ledgerHandlers) create(w http.ResponseWriter, r *http.Request) {
	var in transactionInput
	if err := DecodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err, log.OpCreate)
		return
	}
	t, err := h.svc.Create(r.Context(), userID(r), core.Transaction{
		Amount:      in.Amount,
		Category:    sanitizeInput(in.Category),
		Description: sanitizeInput(in.Description),
		Date:        in.Date,
	})
	if err != nil {
		h.fail(w, r, err, log.OpCreate)
		return
	}
	h.s.appMetrics.transactionsCreated.Add(1)
	Created(h.label+" added successfully", t).Write(w)
}

func (h *ledgerHandlers) list(w http.ResponseWriter, r *http.Request) {
	f, err := ParseLedgerFilter(r.URL.Query())
	if err != nil {
		h.fail(w, r, err, log.OpList)
		return
	}
	page, err := h.svc.List(r.Context(), userID(r), f)
	if err != nil {
		h.fail(w, r, err, log.OpList)
		return
	}
	NewJSONResponse().
		Data(page.Data).
		Field("pagination", page.Pagination).
		Write(w)
}

func (h *ledgerHandlers) get(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Get(r.Context(), userID(r), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err, log.OpRead)
		return
	}
	NewJSONResponse().Data(t).Write(w)
}

func (h *ledgerHandlers) update(w http.ResponseWriter, r *http.Request) {
	var patch core.TransactionPatch
	if err := DecodeJSON(w, r, &patch); err != nil {
		h.fail(w, r, err, log.OpUpdate)
		return
	}
	if patch.Category != nil {
		c := sanitizeInput(*patch.Category)
		patch.Category = &c
	}
	if patch.Description != nil {
		d := sanitizeInput(*patch.Description)
		patch.Description = &d
	}

	t, err := h.svc.Update(r.Context(), userID(r), mux.Vars(r)["id"], patch)
	if err != nil {
		h.fail(w, r, err, log.OpUpdate)
		return
	}
	NewJSONResponse().Message(h.label + " updated successfully").Data(t).Write(w)
}

func (h *ledgerHandlers) delete(w http.ResponseWriter, r *http.Request) {
	if _, err := h.svc.Delete(r.Context(), userID(r), mux.Vars(r)["id"]); err != nil {
		h.fail(w, r, err, log.OpDelete)
		return
	}
	NewJSONResponse().Message(h.label + " deleted successfully").Write(w)
}
