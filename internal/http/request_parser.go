// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.
// It reduces code duplication by providing reusable functions for path ids,
// query dates, list filters and JSON bodies.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"factures/internal/core"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// ParseID extracts the {id} path value as a positive integer.
func ParseID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.PathValue("id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &core.ValidationError{Field: "id", Message: fmt.Sprintf("invalid id %q", raw)}
	}
	return id, nil
}

// ParseDateQuery reads a YYYY-MM-DD query parameter. Missing values yield the zero Date.
func ParseDateQuery(query url.Values, key string) (core.Date, error) {
	d, err := core.ParseDate(query.Get(key))
	if err != nil {
		return core.Date{}, &core.ValidationError{Field: key, Message: "expected YYYY-MM-DD"}
	}
	return d, nil
}

// ParsePeriod reads the required from/to query parameters.
func ParsePeriod(query url.Values) (from, to core.Date, err error) {
	if from, err = ParseDateQuery(query, "from"); err != nil {
		return
	}
	if to, err = ParseDateQuery(query, "to"); err != nil {
		return
	}
	if from.IsZero() {
		return from, to, &core.ValidationError{Field: "from", Message: "required"}
	}
	if to.IsZero() {
		return from, to, &core.ValidationError{Field: "to", Message: "required"}
	}
	return from, to, nil
}

// ParseIntQuery reads an integer query parameter, falling back to def when absent.
func ParseIntQuery(query url.Values, key string, def int) (int, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &core.ValidationError{Field: key, Message: "expected an integer"}
	}
	return n, nil
}

// ParseInvoiceFilter builds a list filter from query parameters.
func ParseInvoiceFilter(query url.Values) (core.InvoiceFilter, error) {
	var f core.InvoiceFilter
	var err error

	if v := strings.TrimSpace(query.Get("client_id")); v != "" {
		if f.ClientID, err = strconv.ParseInt(v, 10, 64); err != nil {
			return f, &core.ValidationError{Field: "client_id", Message: "expected an integer"}
		}
	}
	if v := strings.TrimSpace(query.Get("status")); v != "" {
		if f.Status, err = core.ParseStatus(v); err != nil {
			return f, err
		}
	}
	f.Search = sanitizeInput(query.Get("search"))
	if f.DateFrom, err = ParseDateQuery(query, "from"); err != nil {
		return f, err
	}
	if f.DateTo, err = ParseDateQuery(query, "to"); err != nil {
		return f, err
	}
	if f.Limit, err = ParseIntQuery(query, "limit", 0); err != nil {
		return f, err
	}
	if f.Offset, err = ParseIntQuery(query, "offset", 0); err != nil {
		return f, err
	}
	return f, nil
}

// errBadBody marks request bodies that are not valid JSON for the target type.
var errBadBody = errors.New("invalid request body")

// DecodeJSON decodes the request body into v, rejecting unknown fields and trailing data.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: unexpected data after JSON value", errBadBody)
	}
	return nil
}
