package notify

import (
	"context"
	"errors"
	"fmt"
	"html"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type mailSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridNotifier delivers invitation emails through the SendGrid v3 API.
type SendGridNotifier struct {
	client mailSender
	from   *mail.Email
}

func NewSendGridNotifier(apiKey, fromAddress, fromName string) (*SendGridNotifier, error) {
	if apiKey == "" {
		return nil, errors.New("sendgrid api key is required")
	}
	if fromAddress == "" {
		return nil, errors.New("from address is required")
	}
	return &SendGridNotifier{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail(fromName, fromAddress),
	}, nil
}

func (n *SendGridNotifier) SendInvitation(ctx context.Context, msg InvitationEmail) error {
	if msg.To == "" {
		return errors.New("recipient address is empty")
	}
	subject, plain, rich := invitationContent(msg)
	message := mail.NewSingleEmail(n.from, subject, mail.NewEmail("", msg.To), plain, rich)

	resp, err := n.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send failed: status=%d body=%s", resp.StatusCode, resp.Body)
	}
	return nil
}

func invitationContent(msg InvitationEmail) (subject, plain, rich string) {
	subject = fmt.Sprintf("You're invited to join %s on FamilyHub", msg.FamilyName)
	plain = fmt.Sprintf(
		"You have been invited to join %s as %s.\n\nAccept the invitation: %s\n\nThis link expires on %s.\n",
		msg.FamilyName, msg.Role, msg.AcceptURL, msg.ExpiresAt.UTC().Format("2 January 2006 15:04 MST"),
	)
	rich = fmt.Sprintf("<pre>%s</pre>", html.EscapeString(plain))
	return subject, plain, rich
}
