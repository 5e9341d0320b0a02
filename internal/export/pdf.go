package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"factures/internal/core"
)

const (
	pageMargin       = 20.0
	totalsX          = 115.0
	totalsLabelWidth = 40.0
)

var legalNotices = []string{
	"En cas de retard de paiement, une pénalité de trois fois le taux d'intérêt légal sera appliquée.",
	"Aucun escompte pour paiement anticipé.",
}

// RenderInvoicePDF writes a one-invoice A4 document: company header, client
// block, lines table, totals, notes and payment details.
func RenderInvoicePDF(w io.Writer, company core.CompanyProfile, inv core.InvoiceDetail) error {
	pdf := newInvoicePDF(company, inv)
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render invoice %s: %w", inv.Number, err)
	}
	return nil
}

func newInvoicePDF(company core.CompanyProfile, inv core.InvoiceDetail) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, 40)
	pdf.SetTitle(fmt.Sprintf("Facture %s", inv.Number), true)
	pdf.SetAuthor(company.Name, true)
	pdf.AliasNbPages("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-32)
		pdf.SetFont("Helvetica", "I", 8)
		for _, line := range legalNotices {
			pdf.CellFormat(0, 4, tr(line), "", 1, "L", false, 0, "")
		}
		if company.IBAN != "" {
			pdf.CellFormat(0, 4, tr("IBAN : "+company.IBAN), "", 1, "L", false, 0, "")
		}
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "", 8)
		pdf.CellFormat(0, 4, fmt.Sprintf("Page %d sur {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	companyBlock(pdf, tr, company)
	invoiceBlock(pdf, tr, inv)
	clientBlock(pdf, tr, inv.Client)
	linesTable(pdf, tr, inv.Lines)
	totalsBlock(pdf, tr, inv.Invoice)
	notesBlock(pdf, tr, inv.Notes)
	return pdf
}

func companyBlock(pdf *gofpdf.Fpdf, tr func(string) string, c core.CompanyProfile) {
	if logo := strings.TrimSpace(c.LogoPath); logo != "" && supportedImage(logo) {
		if _, err := os.Stat(logo); err == nil {
			pdf.ImageOptions(logo, 165, 10, 25, 0, false, gofpdf.ImageOptions{ReadDpi: true}, 0, "")
		}
	}

	pdf.SetXY(pageMargin, pageMargin)
	if c.Name != "" {
		pdf.SetFont("Helvetica", "B", 18)
		pdf.CellFormat(100, 9, tr(c.Name), "", 1, "L", false, 0, "")
	}
	pdf.SetFont("Helvetica", "", 10)
	for _, line := range splitLines(c.Address) {
		pdf.CellFormat(100, 5, tr(line), "", 1, "L", false, 0, "")
	}
	if c.Phone != "" {
		pdf.CellFormat(100, 5, tr("Tél : "+c.Phone), "", 1, "L", false, 0, "")
	}
	if c.Email != "" {
		pdf.CellFormat(100, 5, tr("Email : "+c.Email), "", 1, "L", false, 0, "")
	}
	if c.SIRET != "" {
		pdf.CellFormat(100, 5, tr("SIRET : "+c.SIRET), "", 1, "L", false, 0, "")
	}
	if c.VATNumber != "" {
		pdf.CellFormat(100, 5, tr("TVA intracommunautaire : "+c.VATNumber), "", 1, "L", false, 0, "")
	}
}

func invoiceBlock(pdf *gofpdf.Fpdf, tr func(string) string, inv core.InvoiceDetail) {
	bottom := pdf.GetY()
	const x = 130.0

	pdf.SetXY(x, pageMargin)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(60, 9, "FACTURE", "", 2, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(60, 6, tr("Numéro : "+inv.Number), "", 2, "L", false, 0, "")
	pdf.CellFormat(60, 6, tr("Date : "+FrenchDate(inv.IssueDate)), "", 2, "L", false, 0, "")
	if !inv.DueDate.IsZero() {
		pdf.CellFormat(60, 6, tr("Échéance : "+FrenchDate(inv.DueDate)), "", 2, "L", false, 0, "")
	}
	pdf.CellFormat(60, 6, tr("Statut : "+StatusLabel(inv.Status)), "", 2, "L", false, 0, "")

	if y := pdf.GetY(); y > bottom {
		bottom = y
	}
	pdf.SetXY(pageMargin, bottom+12)
}

func clientBlock(pdf *gofpdf.Fpdf, tr func(string) string, c core.ClientContact) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 7, "Client :", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, tr(c.Name), "", 1, "L", false, 0, "")
	for _, line := range splitLines(c.Address) {
		pdf.CellFormat(0, 5, tr(line), "", 1, "L", false, 0, "")
	}
	if c.Email != "" {
		pdf.CellFormat(0, 5, tr("Email : "+c.Email), "", 1, "L", false, 0, "")
	}
	if c.Phone != "" {
		pdf.CellFormat(0, 5, tr("Tél : "+c.Phone), "", 1, "L", false, 0, "")
	}
	if c.SIRET != "" {
		pdf.CellFormat(0, 5, tr("SIRET : "+c.SIRET), "", 1, "L", false, 0, "")
	}
	pdf.Ln(10)
}

func linesTable(pdf *gofpdf.Fpdf, tr func(string) string, lines []core.InvoiceLine) {
	widths := []float64{85, 25, 30, 30}
	heads := []string{"Description", "Quantité", "Prix unitaire", "Total"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(99, 102, 241)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range heads {
		pdf.CellFormat(widths[i], 8, tr(h), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFillColor(245, 245, 245)
	for n, l := range lines {
		desc := pdf.SplitLines([]byte(tr(l.Description)), widths[0]-2)
		h := float64(len(desc)) * 5
		if h < 7 {
			h = 7
		}
		if pdf.GetY()+h > 257 {
			pdf.AddPage()
		}
		fill := n%2 == 1
		x, y := pdf.GetXY()

		pdf.Rect(x, y, widths[0], h, rectStyle(fill))
		for i, part := range desc {
			pdf.SetXY(x+1, y+1+float64(i)*5)
			pdf.CellFormat(widths[0]-2, 5, string(part), "", 0, "L", false, 0, "")
		}
		pdf.SetXY(x+widths[0], y)
		pdf.CellFormat(widths[1], h, formatQuantity(l.Quantity), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(widths[2], h, tr(core.FormatEuros(l.UnitPrice)), "1", 0, "R", fill, 0, "")
		pdf.CellFormat(widths[3], h, tr(core.FormatEuros(l.Total)), "1", 1, "R", fill, 0, "")
	}
	pdf.Ln(8)
}

func totalsBlock(pdf *gofpdf.Fpdf, tr func(string) string, inv core.Invoice) {
	row := func(label, value string) {
		pdf.SetX(totalsX)
		pdf.CellFormat(totalsLabelWidth, 7, tr(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, tr(value), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "", 10)
	row("Sous-total HT :", core.FormatEuros(inv.Subtotal))
	row(fmt.Sprintf("TVA (%s %%) :", strings.Replace(core.FormatRate(inv.TaxRate), ".", ",", 1)), core.FormatEuros(inv.TaxAmount))
	pdf.SetFont("Helvetica", "B", 12)
	row("Total TTC :", core.FormatEuros(inv.Total))
}

func notesBlock(pdf *gofpdf.Fpdf, tr func(string) string, notes string) {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return
	}
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 7, "Notes :", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5, tr(notes), "", "L", false)
}

func rectStyle(fill bool) string {
	if fill {
		return "FD"
	}
	return "D"
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func supportedImage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}

// formatQuantity renders 2 as "2" and 1.5 as "1,5".
func formatQuantity(q float64) string {
	return strings.Replace(decimal.NewFromFloat(q).String(), ".", ",", 1)
}
