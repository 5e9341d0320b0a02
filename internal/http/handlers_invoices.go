package http

import (
	"bytes"
	"net/http"
	"strconv"

	"factures/internal/core"
	"factures/internal/export"
	"factures/internal/log"
)

func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	f, err := ParseInvoiceFilter(r.URL.Query())
	if err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}
	invoices, err := s.invoices.ListInvoices(r.Context(), f)
	if err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}
	if invoices == nil {
		invoices = []core.InvoiceSummary{}
	}
	writeJSON(w, http.StatusOK, invoices)
}

func (s *Server) handleGetInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r)
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	inv, err := s.invoices.GetInvoice(r.Context(), id)
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) handleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	var in core.InvoiceInput
	if err := DecodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, log.OpCreate, err)
		return
	}
	id, err := s.invoices.CreateInvoice(r.Context(), in)
	if err != nil {
		s.writeError(w, r, log.OpCreate, err)
		return
	}
	inv, err := s.invoices.GetInvoice(r.Context(), id)
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	NewResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/invoices/"+strconv.FormatInt(id, 10)).
		JSON(inv).
		Write(w)
}

func (s *Server) handleUpdateInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r)
	if err != nil {
		s.writeError(w, r, log.OpUpdate, err)
		return
	}
	var in core.InvoiceInput
	if err := DecodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, log.OpUpdate, err)
		return
	}
	changed, err := s.invoices.UpdateInvoice(r.Context(), id, in)
	if err != nil {
		s.writeError(w, r, log.OpUpdate, err)
		return
	}
	if !changed {
		s.writeError(w, r, log.OpUpdate, notFound("invoice", id))
		return
	}
	inv, err := s.invoices.GetInvoice(r.Context(), id)
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleSetInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r)
	if err != nil {
		s.writeError(w, r, log.OpSetStatus, err)
		return
	}
	var req statusRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, log.OpSetStatus, err)
		return
	}
	status, err := core.ParseStatus(req.Status)
	if err != nil {
		s.writeError(w, r, log.OpSetStatus, err)
		return
	}
	changed, err := s.invoices.SetInvoiceStatus(r.Context(), id, status)
	if err != nil {
		s.writeError(w, r, log.OpSetStatus, err)
		return
	}
	if !changed {
		s.writeError(w, r, log.OpSetStatus, notFound("invoice", id))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "status": status})
}

func (s *Server) handleDeleteInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r)
	if err != nil {
		s.writeError(w, r, log.OpDelete, err)
		return
	}
	deleted, err := s.invoices.DeleteInvoice(r.Context(), id)
	if err != nil {
		s.writeError(w, r, log.OpDelete, err)
		return
	}
	if !deleted {
		s.writeError(w, r, log.OpDelete, notFound("invoice", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleNextInvoiceNumber(w http.ResponseWriter, r *http.Request) {
	number, err := s.invoices.NextInvoiceNumber(r.Context())
	if err != nil {
		s.writeError(w, r, log.OpNextNumber, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"number": number})
}

func (s *Server) handleInvoicePDF(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r)
	if err != nil {
		s.writeError(w, r, log.OpExport, err)
		return
	}
	inv, err := s.invoices.GetInvoice(r.Context(), id)
	if err != nil {
		s.writeError(w, r, log.OpExport, err)
		return
	}
	company, err := s.company.Get(r.Context())
	if err != nil {
		s.writeError(w, r, log.OpExport, err)
		return
	}

	var buf bytes.Buffer
	if err := export.RenderInvoicePDF(&buf, company, inv); err != nil {
		s.writeError(w, r, log.OpExport, err)
		return
	}
	NewResponse().
		Bytes("application/pdf", buf.Bytes()).
		Attachment(export.InvoiceFileName(inv.Number)).
		Write(w)
}
