package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"

	"github.com/mailpilot/mailpilot-backend/internal/model"
)

// SMTPSender delivers through a credential account's SMTP server. UseSSL
// selects implicit TLS (port 465 style); otherwise the connection upgrades
// with STARTTLS.
type SMTPSender struct{}

func (s *SMTPSender) Send(ctx context.Context, account model.Account, msg Message) error {
	addr := fmt.Sprintf("%s:%d", account.Host, account.Port)

	client, err := s.dial(addr, account)
	if err != nil {
		return err
	}
	defer client.Close()

	auth := smtp.PlainAuth("", account.Username, account.Password, account.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth failed: %w", err)
	}

	if err := client.Mail(account.Email); err != nil {
		return fmt.Errorf("smtp MAIL FROM failed: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("smtp RCPT TO failed: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA failed: %w", err)
	}
	if _, err := w.Write(BuildMIME(account.Email, msg.To, msg)); err != nil {
		w.Close()
		return fmt.Errorf("smtp write failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close failed: %w", err)
	}

	return client.Quit()
}

func (s *SMTPSender) dial(addr string, account model.Account) (*smtp.Client, error) {
	tlsConfig := &tls.Config{ServerName: account.Host}

	if account.UseSSL {
		conn, err := tls.Dial("tcp", addr, tlsConfig)
		if err != nil {
			return nil, fmt.Errorf("tls dial failed: %w", err)
		}
		client, err := smtp.NewClient(conn, account.Host)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("smtp client failed: %w", err)
		}
		return client, nil
	}

	client, err := smtp.Dial(addr)
	if err != nil {
		return nil, fmt.Errorf("dial failed: %w", err)
	}
	if err := client.StartTLS(tlsConfig); err != nil {
		client.Close()
		return nil, fmt.Errorf("starttls failed: %w", err)
	}
	return client, nil
}

var _ Sender = (*SMTPSender)(nil)
