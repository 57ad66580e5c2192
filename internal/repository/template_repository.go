package repository

import "database/sql"

// TemplateRepositoryInterface stores one message body per language code.
type TemplateRepositoryInterface interface {
	GetAll() (map[string]string, error)
	SaveAll(templates map[string]string) error
}

type TemplateRepository struct {
	DB *sql.DB
}

func (r *TemplateRepository) GetAll() (map[string]string, error) {
	rows, err := r.DB.Query(`SELECT language, body FROM templates`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := map[string]string{}
	for rows.Next() {
		var lang, body string
		if err := rows.Scan(&lang, &body); err != nil {
			return nil, err
		}
		templates[lang] = body
	}
	return templates, rows.Err()
}

func (r *TemplateRepository) SaveAll(templates map[string]string) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM templates`); err != nil {
		return err
	}
	for lang, body := range templates {
		if _, err := tx.Exec(`INSERT INTO templates (language, body) VALUES ($1, $2)`, lang, body); err != nil {
			return err
		}
	}

	return tx.Commit()
}

var _ TemplateRepositoryInterface = (*TemplateRepository)(nil)
