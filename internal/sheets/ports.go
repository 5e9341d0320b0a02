package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// DefaultSheetBase names the yearly invoice sheet ("2025 Factures").
const DefaultSheetBase = "Factures"

// Ports for outbound adapters.
type (
	// RowWriter replaces the whole content of a sheet with rows, creating the
	// sheet when it does not exist yet.
	RowWriter interface {
		WriteRows(ctx context.Context, sheet string, rows [][]interface{}) error
	}
)

// YearSheetName returns "<year> <base>" unless base already starts with a 4-digit year.
func YearSheetName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		base = DefaultSheetBase
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
