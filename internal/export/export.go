// Package export turns invoice data into files and spreadsheet rows: CSV
// reports, Google Sheets values and printable invoice PDFs.
package export

import (
	"fmt"
	"strings"

	"factures/internal/core"
)

// Header is the column set shared by the CSV and spreadsheet exports.
var Header = []string{
	"Numéro Facture",
	"Date Émission",
	"Date Échéance",
	"Client",
	"Email Client",
	"Statut",
	"Sous-total HT",
	"Montant TVA",
	"Total TTC",
	"Notes",
}

var statusLabels = map[core.Status]string{
	core.StatusDraft:     "Brouillon",
	core.StatusSent:      "Envoyée",
	core.StatusPaid:      "Payée",
	core.StatusCancelled: "Annulée",
}

// StatusLabel returns the French label of a status, or the raw value when unknown.
func StatusLabel(s core.Status) string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// FrenchDate renders d as DD/MM/YYYY, or "" for the zero date.
func FrenchDate(d core.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Format("02/01/2006")
}

// FileName builds the report file name for a period, e.g.
// "rapport-factures-2025-01-01-au-2025-03-31.csv".
func FileName(from, to core.Date, ext string) string {
	return fmt.Sprintf("rapport-factures-%s-au-%s.%s", from, to, strings.TrimPrefix(ext, "."))
}

// InvoiceFileName is the download name of an invoice PDF.
func InvoiceFileName(number string) string {
	if number == "" {
		number = "facture"
	}
	return number + ".pdf"
}
