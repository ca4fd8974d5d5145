package main

import (
	"net/http"

	"github.com/flavourheaven/costonomy/internal/session"
)

func (s *server) handleRecipeBreakdown(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	b, err := s.sessions.RecipeBreakdown(r.Context(), id, r.URL.Query().Get("storeitems"))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newBreakdownView(b))
}

func (s *server) handleAddIngredients(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	var body struct {
		Rows []session.NewIngredient `json:"rows"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	count, err := s.sessions.AddIngredients(r.Context(), id, body.Rows)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (s *server) handleRemoveIngredient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	itemID, err := pathID(r, "itemID")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if err := s.sessions.RemoveIngredient(r.Context(), id, itemID); err != nil {
		writeFailure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
