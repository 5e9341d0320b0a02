package storage

import (
	"context"
	"database/sql"
)

const createClient = `
INSERT INTO clients (name, email, phone, address, siret)
VALUES (?, ?, ?, ?, ?)
`

type CreateClientParams struct {
	Name    string
	Email   sql.NullString
	Phone   sql.NullString
	Address sql.NullString
	Siret   sql.NullString
}

func (q *Queries) CreateClient(ctx context.Context, arg CreateClientParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, createClient, arg.Name, arg.Email, arg.Phone, arg.Address, arg.Siret)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const updateClient = `
UPDATE clients SET name = ?, email = ?, phone = ?, address = ?, siret = ?
WHERE id = ?
`

type UpdateClientParams struct {
	Name    string
	Email   sql.NullString
	Phone   sql.NullString
	Address sql.NullString
	Siret   sql.NullString
	ID      int64
}

func (q *Queries) UpdateClient(ctx context.Context, arg UpdateClientParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateClient, arg.Name, arg.Email, arg.Phone, arg.Address, arg.Siret, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteClient = `DELETE FROM clients WHERE id = ?`

func (q *Queries) DeleteClient(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteClient, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const getClient = `
SELECT id, name, email, phone, address, siret, created_at
FROM clients
WHERE id = ?
`

func (q *Queries) GetClient(ctx context.Context, id int64) (Client, error) {
	row := q.db.QueryRowContext(ctx, getClient, id)
	var i Client
	err := row.Scan(&i.ID, &i.Name, &i.Email, &i.Phone, &i.Address, &i.Siret, &i.CreatedAt)
	return i, err
}

const clientExists = `SELECT EXISTS(SELECT 1 FROM clients WHERE id = ?)`

func (q *Queries) ClientExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx, clientExists, id).Scan(&exists)
	return exists, err
}

const countClientInvoices = `SELECT COUNT(*) FROM invoices WHERE client_id = ?`

func (q *Queries) CountClientInvoices(ctx context.Context, clientID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countClientInvoices, clientID).Scan(&n)
	return n, err
}

const countClients = `SELECT COUNT(*) FROM clients`

func (q *Queries) CountClients(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countClients).Scan(&n)
	return n, err
}

const listClientsWithStats = `
SELECT c.id, c.name, c.email, c.phone, c.address, c.siret, c.created_at,
       COUNT(i.id) AS invoice_count,
       COALESCE(SUM(i.total), 0) AS total_revenue
FROM clients c
LEFT JOIN invoices i ON i.client_id = c.id
GROUP BY c.id
ORDER BY c.name COLLATE NOCASE, c.id
`

type ListClientsWithStatsRow struct {
	Client
	InvoiceCount int64
	TotalRevenue float64
}

func (q *Queries) ListClientsWithStats(ctx context.Context) ([]ListClientsWithStatsRow, error) {
	rows, err := q.db.QueryContext(ctx, listClientsWithStats)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ListClientsWithStatsRow{}
	for rows.Next() {
		var i ListClientsWithStatsRow
		if err := rows.Scan(
			&i.ID, &i.Name, &i.Email, &i.Phone, &i.Address, &i.Siret, &i.CreatedAt,
			&i.InvoiceCount, &i.TotalRevenue,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const searchClients = `
SELECT id, name, email, phone, address, siret, created_at
FROM clients
WHERE name LIKE ?1 ESCAPE '\' OR email LIKE ?1 ESCAPE '\' OR siret LIKE ?1 ESCAPE '\'
ORDER BY name COLLATE NOCASE, id
`

func (q *Queries) SearchClients(ctx context.Context, pattern string) ([]Client, error) {
	rows, err := q.db.QueryContext(ctx, searchClients, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Client{}
	for rows.Next() {
		var i Client
		if err := rows.Scan(&i.ID, &i.Name, &i.Email, &i.Phone, &i.Address, &i.Siret, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listClientInvoices = `
SELECT id, number, issue_date, due_date, status, total
FROM invoices
WHERE client_id = ?
ORDER BY issue_date DESC, id DESC
`

type ListClientInvoicesRow struct {
	ID        int64
	Number    string
	IssueDate string
	DueDate   sql.NullString
	Status    string
	Total     float64
}

func (q *Queries) ListClientInvoices(ctx context.Context, clientID int64) ([]ListClientInvoicesRow, error) {
	rows, err := q.db.QueryContext(ctx, listClientInvoices, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ListClientInvoicesRow{}
	for rows.Next() {
		var i ListClientInvoicesRow
		if err := rows.Scan(&i.ID, &i.Number, &i.IssueDate, &i.DueDate, &i.Status, &i.Total); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
