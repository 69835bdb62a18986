package notifier

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/petfans/petfans-api/internal/model"
)

func newTestEmailChannel(t *testing.T, send func(m *gomail.Message) error) *EmailChannel {
	t.Helper()
	ch, err := NewEmailChannel(SMTPConfig{Host: "smtp.example.com", Port: 587, From: "hola@petfans.app"})
	require.NoError(t, err)
	ch.send = send
	return ch
}

func TestEmailChannelBuildsMultipartMessage(t *testing.T) {
	var captured *gomail.Message
	ch := newTestEmailChannel(t, func(m *gomail.Message) error {
		captured = m
		return nil
	})

	msg := Message{
		Method:    model.MethodEmail,
		Recipient: "owner@example.com",
		Subject:   "Vaccine reminder",
		Body:      "plain text body",
		HTMLBody:  "<p>html body</p>",
	}
	require.NoError(t, ch.Send(context.Background(), msg))
	require.NotNil(t, captured)

	assert.Equal(t, []string{"owner@example.com"}, captured.GetHeader("To"))
	assert.Equal(t, []string{"hola@petfans.app"}, captured.GetHeader("From"))

	var buf bytes.Buffer
	_, err := captured.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "text/plain")
	assert.Contains(t, buf.String(), "text/html")
}

func TestEmailChannelPropagatesTransportError(t *testing.T) {
	transportErr := errors.New("535 authentication failed")
	ch := newTestEmailChannel(t, func(m *gomail.Message) error {
		return transportErr
	})

	err := ch.Send(context.Background(), Message{Recipient: "owner@example.com", Body: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, transportErr)
}

func TestEmailChannelHonorsContextDeadline(t *testing.T) {
	block := make(chan struct{})
	ch := newTestEmailChannel(t, func(m *gomail.Message) error {
		<-block
		return nil
	})
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := ch.Send(ctx, Message{Recipient: "owner@example.com", Body: "x"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewEmailChannelRequiresHostAndFrom(t *testing.T) {
	_, err := NewEmailChannel(SMTPConfig{Port: 587})
	assert.Error(t, err)
}
