package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	ports "factures/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
}

// Ensure interface conformance
var _ ports.RowWriter = (*Client)(nil)

// Credentials selects the service account used to reach the Sheets API.
// JSON wins over File; GOOGLE_APPLICATION_CREDENTIALS is the last fallback.
type Credentials struct {
	JSON string
	File string
}

// New creates a Sheets client for spreadsheetID. Extra options are appended
// after the credential options, so tests can point the client elsewhere.
func New(ctx context.Context, spreadsheetID string, creds *Credentials, extra ...goption.ClientOption) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	var opts []goption.ClientOption
	if creds != nil {
		credOpts, err := credentialOptions(ctx, *creds)
		if err != nil {
			return nil, err
		}
		opts = append(opts, credOpts...)
	}
	opts = append(opts, extra...)

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets service created", "spreadsheet_id", spreadsheetID)
	return &Client{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func credentialOptions(ctx context.Context, creds Credentials) ([]goption.ClientOption, error) {
	serviceAccountJSON := strings.TrimSpace(creds.JSON)
	serviceAccountFile := strings.TrimSpace(creds.File)
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		b, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	return []goption.ClientOption{
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope),
	}, nil
}

// WriteRows replaces the content of sheet with rows. The sheet is added to
// the spreadsheet when missing.
func (c *Client) WriteRows(ctx context.Context, sheet string, rows [][]interface{}) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	sheet = strings.TrimSpace(sheet)
	if sheet == "" {
		return errors.New("empty sheet name")
	}

	if err := c.ensureSheet(ctx, sheet); err != nil {
		return err
	}

	rng := quoteSheet(sheet)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil
	}

	vr := &gsheet.ValueRange{Values: rows}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng+"!A1", vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", sheet, err)
	}
	slog.InfoContext(ctx, "Sheet rewritten", "sheet", sheet, "rows", len(rows))
	return nil
}

func (c *Client) ensureSheet(ctx context.Context, sheet string) error {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet: %w", err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == sheet {
			return nil
		}
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: sheet}},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet %s: %w", sheet, err)
	}
	slog.InfoContext(ctx, "Sheet created", "sheet", sheet)
	return nil
}

// quoteSheet wraps a sheet title for A1 notation.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
