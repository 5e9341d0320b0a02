package storage

import "database/sql"

type Client struct {
	ID        int64
	Name      string
	Email     sql.NullString
	Phone     sql.NullString
	Address   sql.NullString
	Siret     sql.NullString
	CreatedAt string
}

type Invoice struct {
	ID        int64
	Number    string
	ClientID  int64
	IssueDate string
	DueDate   sql.NullString
	Status    string
	Subtotal  float64
	TaxRate   float64
	TaxAmount float64
	Total     float64
	Notes     sql.NullString
	CreatedAt string
	UpdatedAt string
}

type InvoiceLine struct {
	ID          int64
	InvoiceID   int64
	Description string
	Quantity    float64
	UnitPrice   float64
	Total       float64
}

type CompanyProfile struct {
	ID        int64
	Name      string
	Address   sql.NullString
	Phone     sql.NullString
	Email     sql.NullString
	Siret     sql.NullString
	VatNumber sql.NullString
	LogoPath  sql.NullString
	Iban      sql.NullString
	UpdatedAt string
}
