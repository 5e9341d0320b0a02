package http

import (
	"net/http"
	"strconv"

	"factures/internal/core"
	"factures/internal/log"
)

// handleListClients returns summaries, or plain matches when ?search= is set.
func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	if search := sanitizeInput(r.URL.Query().Get("search")); search != "" {
		clients, err := s.clients.SearchClients(r.Context(), search)
		if err != nil {
			s.writeError(w, r, log.OpSearch, err)
			return
		}
		if clients == nil {
			clients = []core.Client{}
		}
		writeJSON(w, http.StatusOK, clients)
		return
	}

	clients, err := s.clients.ListClients(r.Context())
	if err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}
	if clients == nil {
		clients = []core.ClientSummary{}
	}
	writeJSON(w, http.StatusOK, clients)
}

func (s *Server) handleClientCount(w http.ResponseWriter, r *http.Request) {
	n, err := s.clients.ClientCount(r.Context())
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": n})
}

func (s *Server) handleGetClient(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r)
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	client, err := s.clients.GetClient(r.Context(), id)
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var in core.ClientInput
	if err := DecodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, log.OpCreate, err)
		return
	}
	id, err := s.clients.CreateClient(r.Context(), in)
	if err != nil {
		s.writeError(w, r, log.OpCreate, err)
		return
	}
	client, err := s.clients.GetClient(r.Context(), id)
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	NewResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/clients/"+strconv.FormatInt(id, 10)).
		JSON(client).
		Write(w)
}

func (s *Server) handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r)
	if err != nil {
		s.writeError(w, r, log.OpUpdate, err)
		return
	}
	var in core.ClientInput
	if err := DecodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, log.OpUpdate, err)
		return
	}
	changed, err := s.clients.UpdateClient(r.Context(), id, in)
	if err != nil {
		s.writeError(w, r, log.OpUpdate, err)
		return
	}
	if !changed {
		s.writeError(w, r, log.OpUpdate, notFound("client", id))
		return
	}
	client, err := s.clients.GetClient(r.Context(), id)
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

// handleDeleteClient answers 409 while the client still has invoices.
func (s *Server) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r)
	if err != nil {
		s.writeError(w, r, log.OpDelete, err)
		return
	}
	deleted, err := s.clients.DeleteClient(r.Context(), id)
	if err != nil {
		s.writeError(w, r, log.OpDelete, err)
		return
	}
	if !deleted {
		s.writeError(w, r, log.OpDelete, notFound("client", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
