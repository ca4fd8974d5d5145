package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/flavourheaven/costonomy/internal/session"
)

func (s *server) handleOpenBaseItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	sess, err := s.sessions.OpenBaseItem(r.Context(), id)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newSessionView(sess))
}

func (s *server) handleOpenRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	sess, err := s.sessions.OpenRecipe(r.Context(), id)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newSessionView(sess))
}

func (s *server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(sess))
}

func (s *server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		writeFailure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleRescale(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Target rawInput `json:"target"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	sess, err := s.sessions.Rescale(r.Context(), chi.URLParam(r, "sessionID"), string(body.Target))
	s.respondSession(w, r, sess, err)
}

func (s *server) handleMultiply(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Factor rawInput `json:"factor"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	sess, err := s.sessions.Multiply(r.Context(), chi.URLParam(r, "sessionID"), string(body.Factor))
	s.respondSession(w, r, sess, err)
}

func (s *server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Reset(r.Context(), chi.URLParam(r, "sessionID"))
	s.respondSession(w, r, sess, err)
}

func (s *server) handleEditLine(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "itemID")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	var body struct {
		Quantity rawInput `json:"quantity"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	sess, err := s.sessions.EditLine(r.Context(), chi.URLParam(r, "sessionID"), itemID, string(body.Quantity))
	s.respondSession(w, r, sess, err)
}

func (s *server) handleSaveLine(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "itemID")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	sess, err := s.sessions.SaveLine(r.Context(), chi.URLParam(r, "sessionID"), itemID)
	s.respondSession(w, r, sess, err)
}

func (s *server) handlePurchase(w http.ResponseWriter, r *http.Request) {
	var req session.PurchaseRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	receipt, err := s.sessions.SubmitPurchase(r.Context(), chi.URLParam(r, "sessionID"), req)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPurchaseView(receipt))
}

func (s *server) handleClone(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TargetProductID int64 `json:"targetProductId"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	count, err := s.sessions.SubmitClone(r.Context(), chi.URLParam(r, "sessionID"), body.TargetProductID)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (s *server) respondSession(w http.ResponseWriter, r *http.Request, sess *session.Session, err error) {
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(sess))
}
