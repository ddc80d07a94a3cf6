package notify

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "familyhub/pkg/domain"
)

type fakeSender struct {
	sent *mail.SGMailV3
	resp *rest.Response
	err  error
}

func (f *fakeSender) SendWithContext(_ context.Context, email *mail.SGMailV3) (*rest.Response, error) {
	f.sent = email
	return f.resp, f.err
}

func TestNewSendGridNotifier(t *testing.T) {
	_, err := NewSendGridNotifier("", "from@x.com", "FamilyHub")
	assert.Error(t, err)
	_, err = NewSendGridNotifier("key", "", "FamilyHub")
	assert.Error(t, err)
	n, err := NewSendGridNotifier("key", "from@x.com", "FamilyHub")
	require.NoError(t, err)
	assert.Equal(t, "from@x.com", n.from.Address)
}

func TestSendGridNotifier_SendInvitation(t *testing.T) {
	msg := InvitationEmail{
		InvitationID: id.NewInvitationID(),
		To:           "b@x.com",
		FamilyName:   "<Smiths>",
		Role:         "member",
		AcceptURL:    "https://familyhub.test/invite/tok",
		ExpiresAt:    time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC),
	}

	t.Run("builds a single email", func(t *testing.T) {
		sender := &fakeSender{resp: &rest.Response{StatusCode: http.StatusAccepted}}
		n := &SendGridNotifier{client: sender, from: mail.NewEmail("FamilyHub", "from@x.com")}

		require.NoError(t, n.SendInvitation(context.Background(), msg))
		require.NotNil(t, sender.sent)
		assert.Contains(t, sender.sent.Subject, "<Smiths>")
		require.Len(t, sender.sent.Personalizations, 1)
		assert.Equal(t, "b@x.com", sender.sent.Personalizations[0].To[0].Address)
		require.Len(t, sender.sent.Content, 2)
		assert.Contains(t, sender.sent.Content[0].Value, msg.AcceptURL)
		assert.Contains(t, sender.sent.Content[1].Value, "&lt;Smiths&gt;")
	})

	t.Run("api error status", func(t *testing.T) {
		sender := &fakeSender{resp: &rest.Response{StatusCode: http.StatusUnauthorized, Body: "bad key"}}
		n := &SendGridNotifier{client: sender, from: mail.NewEmail("FamilyHub", "from@x.com")}
		assert.ErrorContains(t, n.SendInvitation(context.Background(), msg), "status=401")
	})

	t.Run("transport error", func(t *testing.T) {
		sender := &fakeSender{err: errors.New("dial tcp: timeout")}
		n := &SendGridNotifier{client: sender, from: mail.NewEmail("FamilyHub", "from@x.com")}
		assert.ErrorContains(t, n.SendInvitation(context.Background(), msg), "dial tcp")
	})

	t.Run("missing recipient", func(t *testing.T) {
		n := &SendGridNotifier{client: &fakeSender{}, from: mail.NewEmail("FamilyHub", "from@x.com")}
		assert.Error(t, n.SendInvitation(context.Background(), InvitationEmail{}))
	})
}
