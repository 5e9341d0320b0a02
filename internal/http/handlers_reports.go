package http

import (
	"bytes"
	"net/http"
	"strings"

	"factures/internal/core"
	"factures/internal/export"
	"factures/internal/log"
)

func (s *Server) handlePeriodReport(w http.ResponseWriter, r *http.Request) {
	from, to, err := ParsePeriod(r.URL.Query())
	if err != nil {
		s.writeError(w, r, log.OpPeriodReport, err)
		return
	}
	report, err := s.reports.PeriodReport(r.Context(), from, to)
	if err != nil {
		s.writeError(w, r, log.OpPeriodReport, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := s.reports.DashboardStats(r.Context())
	if err != nil {
		s.writeError(w, r, log.OpDashboard, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	data, err := s.reports.ChartData(r.Context())
	if err != nil {
		s.writeError(w, r, log.OpChart, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// handleRevenueByMonth serves ?months=N of paid revenue, six by default.
func (s *Server) handleRevenueByMonth(w http.ResponseWriter, r *http.Request) {
	months, err := ParseIntQuery(r.URL.Query(), "months", 0)
	if err != nil {
		s.writeError(w, r, log.OpChart, err)
		return
	}
	revenue, err := s.reports.RevenueByMonth(r.Context(), months)
	if err != nil {
		s.writeError(w, r, log.OpChart, err)
		return
	}
	if revenue == nil {
		revenue = []core.MonthlyRevenue{}
	}
	writeJSON(w, http.StatusOK, revenue)
}

// handleTopClients accepts optional limit, from and to parameters.
func (s *Server) handleTopClients(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, err := ParseIntQuery(query, "limit", 0)
	if err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}
	from, err := ParseDateQuery(query, "from")
	if err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}
	to, err := ParseDateQuery(query, "to")
	if err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}
	clients, err := s.reports.TopClients(r.Context(), limit, from, to)
	if err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}
	if clients == nil {
		clients = []core.TopClient{}
	}
	writeJSON(w, http.StatusOK, clients)
}

func (s *Server) handleInvoiceStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.reports.InvoiceStats(r.Context())
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	if stats == nil {
		stats = []core.StatusStat{}
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleExport returns export rows as JSON, or as a CSV download with format=csv.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	from, to, err := ParsePeriod(query)
	if err != nil {
		s.writeError(w, r, log.OpExport, err)
		return
	}
	rows, err := s.reports.ExportRows(r.Context(), from, to)
	if err != nil {
		s.writeError(w, r, log.OpExport, err)
		return
	}

	switch format := strings.ToLower(strings.TrimSpace(query.Get("format"))); format {
	case "", "json":
		if rows == nil {
			rows = []core.ExportRow{}
		}
		writeJSON(w, http.StatusOK, rows)
	case "csv":
		var buf bytes.Buffer
		if err := export.WriteCSV(&buf, rows); err != nil {
			s.writeError(w, r, log.OpExport, err)
			return
		}
		NewResponse().
			Bytes("text/csv; charset=utf-8", buf.Bytes()).
			Attachment(export.FileName(from, to, "csv")).
			Write(w)
	default:
		s.writeError(w, r, log.OpExport, &core.ValidationError{Field: "format", Message: "expected json or csv"})
	}
}
