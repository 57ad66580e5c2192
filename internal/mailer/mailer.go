package mailer

import (
	"context"
	"fmt"

	"github.com/mailpilot/mailpilot-backend/internal/model"
)

// Sender delivers one message through one account. Implementations exist for
// Gmail OAuth accounts and credential SMTP accounts; tests plug in fakes.
type Sender interface {
	Send(ctx context.Context, account model.Account, msg Message) error
}

// Message is a fully rendered outbound email.
type Message struct {
	To          string
	Subject     string
	Body        string
	Attachments []Attachment
}

// Attachment is a file carried by every message of a campaign.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Router picks the concrete sender for an account kind.
type Router struct {
	Gmail Sender
	SMTP  Sender
}

func (r *Router) Send(ctx context.Context, account model.Account, msg Message) error {
	switch account.Kind {
	case model.AccountKindGmail:
		return r.Gmail.Send(ctx, account, msg)
	case model.AccountKindSMTP:
		return r.SMTP.Send(ctx, account, msg)
	default:
		return fmt.Errorf("unknown account kind %q", account.Kind)
	}
}

var _ Sender = (*Router)(nil)
