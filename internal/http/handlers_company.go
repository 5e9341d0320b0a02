package http

import (
	"net/http"

	"factures/internal/core"
	"factures/internal/log"
)

func (s *Server) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	p, err := s.company.Get(r.Context())
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdateCompany(w http.ResponseWriter, r *http.Request) {
	var p core.CompanyProfile
	if err := DecodeJSON(w, r, &p); err != nil {
		s.writeError(w, r, log.OpUpdate, err)
		return
	}
	if err := s.company.Update(r.Context(), p); err != nil {
		s.writeError(w, r, log.OpUpdate, err)
		return
	}
	updated, err := s.company.Get(r.Context())
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
