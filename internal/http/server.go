package http

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"factures/internal/core"
	"factures/internal/log"
	"factures/internal/metrics"
	"factures/internal/middleware/ratelimit"
	"factures/internal/middleware/security"
	"factures/internal/middleware/trace"
	"factures/internal/services"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies groups what the API needs to serve requests.
type Dependencies struct {
	Invoices *services.InvoiceService
	Clients  *services.ClientService
	Reports  *services.ReportService
	Company  *services.CompanyService
	Store    Pinger
	Metrics  *metrics.Metrics
	Logger   *log.Logger
	// WriteRateLimit caps mutating requests per client per minute; 0 disables it.
	WriteRateLimit int
	// TrustProxyHeaders keys clients on X-Forwarded-For instead of the peer address.
	TrustProxyHeaders bool
}

type Server struct {
	http.Server
	invoices *services.InvoiceService
	clients  *services.ClientService
	reports  *services.ReportService
	company  *services.CompanyService
	store    Pinger
	metrics  *metrics.Metrics

	rateLimiter  *ratelimit.Limiter
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, deps Dependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	m := deps.Metrics
	if m == nil {
		m = metrics.New()
	}

	s := &Server{
		invoices: deps.Invoices,
		clients:  deps.Clients,
		reports:  deps.Reports,
		company:  deps.Company,
		store:    deps.Store,
		metrics:  m,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", m.Handler())

	mux.HandleFunc("GET /api/invoices", s.handleListInvoices)
	mux.HandleFunc("POST /api/invoices", s.handleCreateInvoice)
	mux.HandleFunc("GET /api/invoices/next-number", s.handleNextInvoiceNumber)
	mux.HandleFunc("GET /api/invoices/{id}", s.handleGetInvoice)
	mux.HandleFunc("PUT /api/invoices/{id}", s.handleUpdateInvoice)
	mux.HandleFunc("DELETE /api/invoices/{id}", s.handleDeleteInvoice)
	mux.HandleFunc("PUT /api/invoices/{id}/status", s.handleSetInvoiceStatus)
	mux.HandleFunc("GET /api/invoices/{id}/pdf", s.handleInvoicePDF)

	mux.HandleFunc("GET /api/clients", s.handleListClients)
	mux.HandleFunc("POST /api/clients", s.handleCreateClient)
	mux.HandleFunc("GET /api/clients/count", s.handleClientCount)
	mux.HandleFunc("GET /api/clients/{id}", s.handleGetClient)
	mux.HandleFunc("PUT /api/clients/{id}", s.handleUpdateClient)
	mux.HandleFunc("DELETE /api/clients/{id}", s.handleDeleteClient)

	mux.HandleFunc("GET /api/reports/period", s.handlePeriodReport)
	mux.HandleFunc("GET /api/reports/revenue", s.handleRevenueByMonth)
	mux.HandleFunc("GET /api/reports/top-clients", s.handleTopClients)
	mux.HandleFunc("GET /api/reports/status", s.handleInvoiceStats)
	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/dashboard/charts", s.handleCharts)
	mux.HandleFunc("GET /api/export", s.handleExport)

	mux.HandleFunc("GET /api/company", s.handleGetCompany)
	mux.HandleFunc("PUT /api/company", s.handleUpdateCompany)

	clientIP := ClientIP
	if deps.TrustProxyHeaders {
		clientIP = ProxiedClientIP
	}

	// Outermost first: trace sees the final status and the matched route.
	var handler http.Handler = mux
	if deps.WriteRateLimit > 0 {
		limiterCfg := ratelimit.DefaultConfig()
		limiterCfg.RequestsPerMinute = deps.WriteRateLimit
		s.rateLimiter = ratelimit.NewLimiter(limiterCfg)
		handler = s.rateLimiter.Middleware(clientIP, func(w http.ResponseWriter, r *http.Request) {
			ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, retry later").Write(w)
		})(handler)
	}
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = trace.NewMiddleware(logger, m, clientIP).Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown gracefully shuts down the server and the rate limiter cleanup.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.store.Ping(ctx); err != nil {
			log.FromContext(r.Context()).Warn("Readiness check failed", log.FieldError, err.Error())
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ready"))
}

// writeJSON sends v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	NewResponse().Status(status).JSON(v).Write(w)
}

// writeError maps err to a status, counts it and logs server-side failures.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, kind, body := statusForError(err)
	s.metrics.IncrDomainError(kind)

	fields := log.NewFields().WithOperation(op).WithErrorType(kind).WithError(err)
	logger := log.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", fields.ToSlice()...)
	} else {
		logger.Debug("Request rejected", fields.ToSlice()...)
	}
	NewResponse().Status(status).JSON(body).Write(w)
}

// notFound is the error returned when a mutation touched no row.
func notFound(what string, id int64) error {
	return fmt.Errorf("%s %d: %w", what, id, core.ErrNotFound)
}
