package email

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderCode(t *testing.T) {
	m, err := RenderCode("a@x.com", CodeVars{Code: "012345", TTL: 10 * time.Minute, Purpose: PurposeReset})
	require.NoError(t, err)

	assert.Equal(t, "a@x.com", m.To)
	assert.Equal(t, "Your bizdesk password reset code", m.Subject)
	assert.Contains(t, m.Text, "012345")
	assert.Contains(t, m.Text, "10 minutes")
	assert.Contains(t, m.Text, "ignore this email")
	assert.Contains(t, m.HTML, "<strong>012345</strong>")

	m, err = RenderCode("a@x.com", CodeVars{Code: "999999", TTL: 10 * time.Minute, Purpose: PurposeSignup, Product: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, "Your Acme sign-up code", m.Subject)
	assert.NotContains(t, m.Text, "ignore this email")
}

func TestLogSender(t *testing.T) {
	s := LogSender{}
	assert.NoError(t, s.Send(context.Background(), Message{To: "a@x.com", Subject: "s", Text: "t"}))
	assert.ErrorIs(t, s.Send(context.Background(), Message{}), ErrInvalidInput)
}

func TestSMTPSender_DialFailure(t *testing.T) {
	s := &SMTPSender{Host: "127.0.0.1", Port: 1, From: "no-reply@x.com", TLSMode: "none", Timeout: time.Second}
	err := s.Send(context.Background(), Message{To: "a@x.com", Subject: "s", Text: "t"})
	assert.ErrorIs(t, err, ErrSendFailed)
}

func TestSMTPSender_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := &SMTPSender{Host: "127.0.0.1", Port: 1}
	err := s.Send(ctx, Message{To: "a@x.com", Subject: "s"})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSenderFunc(t *testing.T) {
	var got Message
	s := SenderFunc(func(_ context.Context, m Message) error { got = m; return nil })
	require.NoError(t, s.Send(context.Background(), Message{To: "a@x.com"}))
	assert.Equal(t, "a@x.com", got.To)
}
