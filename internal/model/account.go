// internal/model/account.go
package model

import "time"

const (
	AccountKindGmail = "gmail"
	AccountKindSMTP  = "smtp"
)

// Account is a sender identity the dispatcher can rotate through. Gmail
// accounts carry OAuth client credentials plus a refresh token; SMTP accounts
// carry host credentials.
type Account struct {
	ID        string    `db:"id" json:"id"`
	Kind      string    `db:"kind" json:"type"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Connected bool      `db:"connected" json:"isConnected"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	// SMTP credentials
	Host     string `db:"host" json:"host,omitempty"`
	Port     int    `db:"port" json:"port,omitempty"`
	Username string `db:"username" json:"username,omitempty"`
	Password string `db:"password" json:"-"`
	UseSSL   bool   `db:"use_ssl" json:"use_ssl,omitempty"`

	// Gmail OAuth credentials
	ClientID     string `db:"client_id" json:"-"`
	ClientSecret string `db:"client_secret" json:"-"`
	RefreshToken string `db:"refresh_token" json:"-"`
}
