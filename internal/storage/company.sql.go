package storage

import (
	"context"
	"database/sql"
)

const getCompanyProfile = `
SELECT id, name, address, phone, email, siret, vat_number, logo_path, iban, updated_at
FROM company_profile
WHERE id = 1
`

func (q *Queries) GetCompanyProfile(ctx context.Context) (CompanyProfile, error) {
	row := q.db.QueryRowContext(ctx, getCompanyProfile)
	var i CompanyProfile
	err := row.Scan(
		&i.ID, &i.Name, &i.Address, &i.Phone, &i.Email,
		&i.Siret, &i.VatNumber, &i.LogoPath, &i.Iban, &i.UpdatedAt,
	)
	return i, err
}

const updateCompanyProfile = `
UPDATE company_profile SET
    name = ?, address = ?, phone = ?, email = ?, siret = ?,
    vat_number = ?, logo_path = ?, iban = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = 1
`

type UpdateCompanyProfileParams struct {
	Name      string
	Address   sql.NullString
	Phone     sql.NullString
	Email     sql.NullString
	Siret     sql.NullString
	VatNumber sql.NullString
	LogoPath  sql.NullString
	Iban      sql.NullString
}

func (q *Queries) UpdateCompanyProfile(ctx context.Context, arg UpdateCompanyProfileParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateCompanyProfile,
		arg.Name, arg.Address, arg.Phone, arg.Email, arg.Siret,
		arg.VatNumber, arg.LogoPath, arg.Iban,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
