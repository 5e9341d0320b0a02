// Package http serves the invoicing JSON API.
//
// This file implements the Builder Pattern for constructing responses: a
// fluent API for status, headers and body, plus the mapping from domain
// errors to status codes.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"factures/internal/core"
	"factures/internal/log"
)

// ResponseBuilder provides a fluent API for building API responses.
type ResponseBuilder struct {
	statusCode int
	body       []byte
	headers    map[string]string
	err        error
}

// NewResponse creates a new response builder with default 200 status.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// JSON encodes v as the response body.
func (b *ResponseBuilder) JSON(v any) *ResponseBuilder {
	b.headers["Content-Type"] = "application/json; charset=utf-8"
	b.body, b.err = json.Marshal(v)
	return b
}

// Bytes sets a raw body with its content type.
func (b *ResponseBuilder) Bytes(contentType string, content []byte) *ResponseBuilder {
	b.headers["Content-Type"] = contentType
	b.body = content
	return b
}

// Attachment marks the body as a download named filename.
func (b *ResponseBuilder) Attachment(filename string) *ResponseBuilder {
	b.headers["Content-Disposition"] = `attachment; filename="` + filename + `"`
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	if b.err != nil {
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// ErrorResponse creates a JSON error response.
func ErrorResponse(statusCode int, message string) *ResponseBuilder {
	return NewResponse().Status(statusCode).JSON(errorBody{Error: message})
}

// statusForError maps domain errors to an HTTP status, an error kind for
// metrics and logs, and the message shown to the client.
func statusForError(err error) (int, string, errorBody) {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, log.ErrorTypeValidation, errorBody{Error: verr.Message, Field: verr.Field}
	case errors.Is(err, core.ErrValidation):
		return http.StatusUnprocessableEntity, log.ErrorTypeValidation, errorBody{Error: err.Error()}
	case errors.Is(err, errBadBody):
		return http.StatusBadRequest, log.ErrorTypeValidation, errorBody{Error: err.Error()}
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, log.ErrorTypeNotFound, errorBody{Error: err.Error()}
	case errors.Is(err, core.ErrClientHasInvoices), errors.Is(err, core.ErrSequenceExhausted):
		return http.StatusConflict, log.ErrorTypeConflict, errorBody{Error: err.Error()}
	default:
		return http.StatusInternalServerError, log.ErrorTypeInternal, errorBody{Error: "internal error"}
	}
}
