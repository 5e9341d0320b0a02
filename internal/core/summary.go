package core

// InvoiceFilter narrows ListInvoices. Zero values disable a criterion.
type InvoiceFilter struct {
	ClientID int64
	Status   Status
	// Search matches the invoice number or the client name, case-insensitively.
	Search   string
	DateFrom Date
	DateTo   Date
	Limit    int
	Offset   int
}

// InvoiceSummary is a list row: the invoice plus its client's name and email.
type InvoiceSummary struct {
	Invoice
	ClientName  string `json:"client_name"`
	ClientEmail string `json:"client_email,omitempty"`
}

type ClientContact struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	SIRET   string `json:"siret,omitempty"`
}

type InvoiceDetail struct {
	Invoice
	Client ClientContact `json:"client"`
	Lines  []InvoiceLine `json:"lines"`
}

// ClientSummary carries invoice count and revenue across all statuses.
type ClientSummary struct {
	Client
	InvoiceCount int     `json:"invoice_count"`
	TotalRevenue float64 `json:"total_revenue"`
}

type ClientInvoice struct {
	ID        int64   `json:"id"`
	Number    string  `json:"number"`
	IssueDate Date    `json:"issue_date"`
	DueDate   Date    `json:"due_date"`
	Status    Status  `json:"status"`
	Total     float64 `json:"total"`
}

type ClientDetail struct {
	Client
	Invoices []ClientInvoice `json:"invoices"`
}

// TopClient ranks a client by paid revenue.
type TopClient struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email,omitempty"`
	InvoiceCount int     `json:"invoice_count"`
	Revenue      float64 `json:"revenue"`
}

type StatusStat struct {
	Status Status  `json:"status"`
	Count  int     `json:"count"`
	Total  float64 `json:"total"`
}

// MonthlyRevenue is paid revenue for one YYYY-MM month.
type MonthlyRevenue struct {
	Month        string  `json:"month"`
	Revenue      float64 `json:"revenue"`
	InvoiceCount int     `json:"invoice_count"`
}

// PeriodStats counts every invoice in range; revenue figures are paid only.
type PeriodStats struct {
	TotalInvoices     int     `json:"total_invoices"`
	PaidInvoices      int     `json:"paid_invoices"`
	SentInvoices      int     `json:"sent_invoices"`
	DraftInvoices     int     `json:"draft_invoices"`
	CancelledInvoices int     `json:"cancelled_invoices"`
	RevenueTotal      float64 `json:"revenue_total"`
	RevenueSubtotal   float64 `json:"revenue_subtotal"`
	TaxTotal          float64 `json:"tax_total"`
}

type PeriodReport struct {
	From       Date             `json:"from"`
	To         Date             `json:"to"`
	Stats      PeriodStats      `json:"stats"`
	Invoices   []InvoiceSummary `json:"invoices"`
	TopClients []TopClient      `json:"top_clients"`
	Monthly    []MonthlyRevenue `json:"monthly"`
}

type DashboardStats struct {
	RevenueThisMonth float64 `json:"revenue_this_month"`
	RevenueLastMonth float64 `json:"revenue_last_month"`
	// Variation is the month-over-month change in percent, one decimal.
	Variation        float64 `json:"variation"`
	PendingCount     int     `json:"pending_count"`
	PendingAmount    float64 `json:"pending_amount"`
	PaidThisMonth    int     `json:"paid_this_month"`
	ActiveClients    int     `json:"active_clients"`
	TotalClients     int     `json:"total_clients"`
}

type ChartData struct {
	Monthly  []MonthlyRevenue `json:"monthly"`
	ByStatus []StatusStat     `json:"by_status"`
}

// ExportRow is the flat invoice projection used by CSV and spreadsheet exports.
type ExportRow struct {
	Number      string  `json:"number"`
	IssueDate   Date    `json:"issue_date"`
	DueDate     Date    `json:"due_date"`
	ClientName  string  `json:"client_name"`
	ClientEmail string  `json:"client_email"`
	Status      Status  `json:"status"`
	Subtotal    float64 `json:"subtotal"`
	TaxAmount   float64 `json:"tax_amount"`
	Total       float64 `json:"total"`
	Notes       string  `json:"notes"`
}
