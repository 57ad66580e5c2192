package repository

import (
	"database/sql"

	"github.com/mailpilot/mailpilot-backend/internal/model"
)

// DeliveryLogRepositoryInterface persists per-recipient campaign outcomes
// consumed from the campaign_events queue.
type DeliveryLogRepositoryInterface interface {
	Insert(ev *model.DeliveryEvent) error
}

type DeliveryLogRepository struct {
	DB *sql.DB
}

func (r *DeliveryLogRepository) Insert(ev *model.DeliveryEvent) error {
	query := `
        INSERT INTO delivery_log (type, recipient, account, attempts, last_error, occurred_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id
    `
	return r.DB.QueryRow(query,
		ev.Type, ev.Recipient, ev.Account, ev.Attempts, ev.LastError, ev.OccurredAt,
	).Scan(&ev.ID)
}

var _ DeliveryLogRepositoryInterface = (*DeliveryLogRepository)(nil)
