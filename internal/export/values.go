package export

import "factures/internal/core"

// SheetValues converts rows into a values matrix for a spreadsheet, header
// first. Amounts stay numeric, rounded to cents.
func SheetValues(rows []core.ExportRow) [][]interface{} {
	out := make([][]interface{}, 0, len(rows)+1)
	head := make([]interface{}, len(Header))
	for i, h := range Header {
		head[i] = h
	}
	out = append(out, head)
	for _, r := range rows {
		out = append(out, []interface{}{
			r.Number,
			r.IssueDate.String(),
			r.DueDate.String(),
			r.ClientName,
			r.ClientEmail,
			StatusLabel(r.Status),
			core.Amount(r.Subtotal).InexactFloat64(),
			core.Amount(r.TaxAmount).InexactFloat64(),
			core.Amount(r.Total).InexactFloat64(),
			r.Notes,
		})
	}
	return out
}
