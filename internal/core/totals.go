package core

// Totals holds the derived amounts of an invoice.
type Totals struct {
	Subtotal  float64
	TaxAmount float64
	Total     float64
}

// LineTotal is quantity times unit price, unrounded.
func LineTotal(quantity, unitPrice float64) float64 {
	return quantity * unitPrice
}

// LinesSubtotal sums the line totals.
func LinesSubtotal(lines []LineInput) float64 {
	var sum float64
	for _, l := range lines {
		sum += LineTotal(l.Quantity, l.UnitPrice)
	}
	return sum
}

// ComputeTotals derives tax and total from the lines and a percentage rate.
// No rounding is applied; formatting is a presentation concern.
func ComputeTotals(lines []LineInput, rate float64) Totals {
	sub := LinesSubtotal(lines)
	tax := sub * rate / 100
	return Totals{Subtotal: sub, TaxAmount: tax, Total: sub + tax}
}

// Apply normalizes the input and returns the invoice fields and lines to persist.
// It is the only way invoice amounts are produced.
func (in InvoiceInput) Apply() (Invoice, []InvoiceLine) {
	rate := DefaultTaxRate
	if in.TaxRate != nil {
		rate = *in.TaxRate
	}
	status := in.Status
	if status == "" {
		status = StatusDraft
	}
	t := ComputeTotals(in.Lines, rate)
	inv := Invoice{
		Number:    in.Number,
		ClientID:  in.ClientID,
		IssueDate: in.IssueDate,
		DueDate:   in.DueDate,
		Status:    status,
		Subtotal:  t.Subtotal,
		TaxRate:   rate,
		TaxAmount: t.TaxAmount,
		Total:     t.Total,
		Notes:     in.Notes,
	}
	lines := make([]InvoiceLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, InvoiceLine{
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Total:       LineTotal(l.Quantity, l.UnitPrice),
		})
	}
	return inv, lines
}
