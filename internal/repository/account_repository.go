package repository

import (
	"database/sql"
	"errors"

	appErrors "github.com/mailpilot/mailpilot-backend/internal/errors"
	"github.com/mailpilot/mailpilot-backend/internal/model"
)

// AccountRepositoryInterface defines the account operations used by the
// service and handler layers.
type AccountRepositoryInterface interface {
	GetByID(id string) (*model.Account, error)
	ListAll() ([]model.Account, error)
	Create(a *model.Account) error
	Delete(id string) error
	SetConnected(id string, connected bool) error
}

type AccountRepository struct {
	DB *sql.DB
}

const accountColumns = `id, kind, name, email, connected, created_at,
	host, port, username, password, use_ssl,
	client_id, client_secret, refresh_token`

func scanAccount(row interface{ Scan(...any) error }) (*model.Account, error) {
	var a model.Account
	err := row.Scan(
		&a.ID, &a.Kind, &a.Name, &a.Email, &a.Connected, &a.CreatedAt,
		&a.Host, &a.Port, &a.Username, &a.Password, &a.UseSSL,
		&a.ClientID, &a.ClientSecret, &a.RefreshToken,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepository) GetByID(id string) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id=$1`
	a, err := scanAccount(r.DB.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewAccountNotFound(id)
		}
		return nil, err
	}
	return a, nil
}

func (r *AccountRepository) ListAll() ([]model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at`
	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := []model.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}

func (r *AccountRepository) Create(a *model.Account) error {
	query := `
        INSERT INTO accounts
        (id, kind, name, email, connected, host, port, username, password, use_ssl,
         client_id, client_secret, refresh_token, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
        RETURNING created_at
    `
	return r.DB.QueryRow(query,
		a.ID, a.Kind, a.Name, a.Email, a.Connected,
		a.Host, a.Port, a.Username, a.Password, a.UseSSL,
		a.ClientID, a.ClientSecret, a.RefreshToken,
	).Scan(&a.CreatedAt)
}

func (r *AccountRepository) Delete(id string) error {
	res, err := r.DB.Exec(`DELETE FROM accounts WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return appErrors.NewAccountNotFound(id)
	}
	return nil
}

func (r *AccountRepository) SetConnected(id string, connected bool) error {
	_, err := r.DB.Exec(`UPDATE accounts SET connected=$1 WHERE id=$2`, connected, id)
	return err
}

var _ AccountRepositoryInterface = (*AccountRepository)(nil)
