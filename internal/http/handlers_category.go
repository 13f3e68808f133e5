package http

import (
	"net/http"
	"strings"

	"cashflow/internal/core"
	"cashflow/internal/log"

	"github.com/gorilla/mux"
)

type categoryInput struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
}

type mergeInput struct {
	TargetCategoryID string `json:"targetCategoryId"`
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var in categoryInput
	if err := DecodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err, log.ComponentCategory, log.OpCreate)
		return
	}
	c, err := s.svc.Categories.Create(r.Context(), userID(r), core.Category{
		Name:        sanitizeInput(in.Name),
		Type:        core.CategoryType(strings.TrimSpace(in.Type)),
		Description: sanitizeInput(in.Description),
		Icon:        sanitizeInput(in.Icon),
		Color:       strings.TrimSpace(in.Color),
	})
	if err != nil {
		s.writeError(w, r, err, log.ComponentCategory, log.OpCreate)
		return
	}
	Created("Category added successfully", c).Write(w)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.svc.Categories.List(r.Context(), userID(r))
	if err != nil {
		s.writeError(w, r, err, log.ComponentCategory, log.OpList)
		return
	}
	if cats == nil {
		cats = []core.Category{}
	}
	NewJSONResponse().Data(cats).Write(w)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	c, err := s.svc.Categories.Get(r.Context(), userID(r), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err, log.ComponentCategory, log.OpRead)
		return
	}
	NewJSONResponse().Data(c).Write(w)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Categories.Delete(r.Context(), userID(r), mux.Vars(r)["id"]); err != nil {
		s.writeError(w, r, err, log.ComponentCategory, log.OpDelete)
		return
	}
	NewJSONResponse().Message("Category deleted successfully").Write(w)
}

func (s *Server) handleMergeCategory(w http.ResponseWriter, r *http.Request) {
	var in mergeInput
	if err := DecodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err, log.ComponentCategory, log.OpMerge)
		return
	}
	moved, err := s.svc.Categories.Merge(r.Context(), userID(r), mux.Vars(r)["id"], strings.TrimSpace(in.TargetCategoryID))
	if err != nil {
		s.writeError(w, r, err, log.ComponentCategory, log.OpMerge)
		return
	}
	NewJSONResponse().
		Message("Category merged successfully").
		Field("moved", moved).
		Write(w)
}
