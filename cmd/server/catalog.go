package main

import "net/http"

func (s *server) handleDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := s.sessions.Departments(r.Context())
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"list": departments})
}

func (s *server) handleItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.sessions.Items(r.Context())
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"list": items})
}

func (s *server) handleProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.sessions.Products(r.Context())
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"list": products})
}
