package repository

import (
	"database/sql"

	"github.com/mailpilot/mailpilot-backend/internal/model"
)

// ContactRepositoryInterface is the contact source for campaigns.
type ContactRepositoryInterface interface {
	ListAll() ([]model.Contact, error)
	ReplaceAll(contacts []model.Contact) error
}

type ContactRepository struct {
	DB *sql.DB
}

func (r *ContactRepository) ListAll() ([]model.Contact, error) {
	rows, err := r.DB.Query(`SELECT id, email, name, language FROM contacts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := []model.Contact{}
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(&c.ID, &c.Email, &c.Name, &c.Language); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// ReplaceAll swaps the whole contact list in one transaction. The uploaded
// file is the source of truth, so partial merges are never wanted.
func (r *ContactRepository) ReplaceAll(contacts []model.Contact) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM contacts`); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO contacts (email, name, language) VALUES ($1, $2, $3)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range contacts {
		if c.Email == "" {
			continue
		}
		lang := c.Language
		if lang == "" {
			lang = "EN"
		}
		if _, err := stmt.Exec(c.Email, c.Name, lang); err != nil {
			return err
		}
	}

	return tx.Commit()
}

var _ ContactRepositoryInterface = (*ContactRepository)(nil)
