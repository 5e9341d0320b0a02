package trace

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"factures/internal/log"
)

type ContextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey ContextKey = "request_id"

	// RequestIDHeader carries the id in and out of the API.
	RequestIDHeader = "X-Request-ID"

	maxRequestIDLen = 64
)

// Observer receives one observation per served request.
type Observer interface {
	ObserveRequest(route, method string, status int, d time.Duration)
}

// Middleware assigns request ids, logs every request and reports it to the observer.
type Middleware struct {
	logger    *log.Logger
	observer  Observer
	extractIP func(*http.Request) string
}

func NewMiddleware(logger *log.Logger, observer Observer, extractIP func(*http.Request) string) *Middleware {
	if logger == nil {
		logger = log.Default().WithComponent(log.ComponentHTTP)
	}
	return &Middleware{logger: logger, observer: observer, extractIP: extractIP}
}

func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := requestIDFrom(r)
		w.Header().Set(RequestIDHeader, requestID)

		reqLogger := m.logger.With(log.FieldRequestID, requestID)
		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		ctx = log.NewContext(ctx, reqLogger)
		r = r.WithContext(ctx)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		if m.observer != nil {
			m.observer.ObserveRequest(r.Pattern, r.Method, rw.statusCode, duration)
		}

		clientIP := ""
		if m.extractIP != nil {
			clientIP = m.extractIP(r)
		}
		fields := log.NewFields().
			WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent")).
			WithHTTPResponse(rw.statusCode, duration.Milliseconds())
		fields[log.FieldClientIP] = clientIP
		fields["route"] = r.Pattern

		reqLogger.Log(ctx, levelFor(rw.statusCode), "HTTP request completed", fields.ToSlice()...)
	})
}

func levelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// requestIDFrom reuses a well-formed incoming id, otherwise generates one.
func requestIDFrom(r *http.Request) string {
	id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
	if id == "" || len(id) > maxRequestIDLen || strings.ContainsAny(id, " \t\r\n") {
		return uuid.NewString()
	}
	return id
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

// GetRequestID extracts the request ID from context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
