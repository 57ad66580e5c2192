package mailer

import (
	"context"
	"encoding/base64"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/mailpilot/mailpilot-backend/internal/model"
)

// GmailSender sends through the Gmail API using each account's OAuth client
// credentials and refresh token. The oauth2 transport refreshes access
// tokens on demand.
type GmailSender struct{}

func (g *GmailSender) Send(ctx context.Context, account model.Account, msg Message) error {
	if account.RefreshToken == "" {
		return fmt.Errorf("gmail: account %s has no refresh token", account.Email)
	}

	oauthCfg := &oauth2.Config{
		ClientID:     account.ClientID,
		ClientSecret: account.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailSendScope},
	}
	token := &oauth2.Token{RefreshToken: account.RefreshToken}
	client := oauthCfg.Client(ctx, token)

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return fmt.Errorf("gmail: create service: %w", err)
	}

	raw := BuildMIME(account.Email, msg.To, msg)
	gmailMsg := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(raw),
	}

	if _, err := svc.Users.Messages.Send("me", gmailMsg).Context(ctx).Do(); err != nil {
		return fmt.Errorf("gmail: send to %s: %w", msg.To, err)
	}
	return nil
}

var _ Sender = (*GmailSender)(nil)
