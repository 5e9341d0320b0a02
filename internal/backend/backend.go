// Package backend selects where spreadsheet exports are written.
package backend

import (
	"context"
	"fmt"
	"strings"

	goption "google.golang.org/api/option"

	"factures/internal/config"
	"factures/internal/sheets"
	gsheet "factures/internal/sheets/google"
	"factures/internal/sheets/memory"
)

// Type names a spreadsheet backend.
type Type string

const (
	GoogleBackend Type = "google"
	MemoryBackend Type = "memory"
)

func (t Type) IsValid() bool {
	return t == GoogleBackend || t == MemoryBackend
}

func (t Type) String() string {
	return string(t)
}

// Config holds what is needed to open a row writer.
type Config struct {
	Type          Type
	SpreadsheetID string
	Credentials   gsheet.Credentials
}

// FromAppConfig converts the application config to backend config.
// An empty SHEETS_BACKEND means google.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := Type(strings.ToLower(strings.TrimSpace(appConfig.SheetsBackend)))
	if backendType == "" {
		backendType = GoogleBackend
	}
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid sheets backend in config: %s", appConfig.SheetsBackend)
	}

	return Config{
		Type:          backendType,
		SpreadsheetID: appConfig.GoogleSpreadsheetID,
		Credentials: gsheet.Credentials{
			JSON: appConfig.GoogleServiceAccountJSON,
			File: appConfig.GoogleServiceAccountFile,
		},
	}, nil
}

func (c Config) Validate() error {
	switch c.Type {
	case GoogleBackend:
		if c.SpreadsheetID == "" {
			return fmt.Errorf("spreadsheet id is required for the google backend")
		}
	case MemoryBackend:
	default:
		return fmt.Errorf("invalid sheets backend: %s", c.Type)
	}
	return nil
}

// OpenRowWriter builds the writer for c. Extra options only apply to the
// google backend. Without explicit credentials the client falls back to
// application default credentials.
func OpenRowWriter(ctx context.Context, c Config, extra ...goption.ClientOption) (sheets.RowWriter, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.Type == MemoryBackend {
		return memory.New(), nil
	}
	var creds *gsheet.Credentials
	if c.Credentials.JSON != "" || c.Credentials.File != "" {
		creds = &c.Credentials
	}
	client, err := gsheet.New(ctx, c.SpreadsheetID, creds, extra...)
	if err != nil {
		return nil, fmt.Errorf("open google sheets: %w", err)
	}
	return client, nil
}
