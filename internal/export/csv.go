package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"factures/internal/core"
)

// WriteCSV writes the header then one record per row. Amounts use a dot
// separator with two decimals; fields containing commas, quotes or newlines
// are quoted.
func WriteCSV(w io.Writer, rows []core.ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		rec := []string{
			r.Number,
			r.IssueDate.String(),
			r.DueDate.String(),
			r.ClientName,
			r.ClientEmail,
			string(r.Status),
			core.FormatAmount(r.Subtotal),
			core.FormatAmount(r.TaxAmount),
			core.FormatAmount(r.Total),
			r.Notes,
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row %s: %w", r.Number, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
