package mail

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/spacehub/internal/accounts/domain"
	"github.com/stretchr/testify/require"
)

func TestCodeMessage(t *testing.T) {
	exp := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for _, tc := range []struct {
		purpose domain.Purpose
		subject string
	}{
		{domain.PurposeVerify, "Verify your email address"},
		{domain.PurposeReset, "Reset your password"},
	} {
		t.Run(string(tc.purpose), func(t *testing.T) {
			msg, err := CodeMessage("a@x.com", "123456", tc.purpose, exp)
			require.NoError(t, err)
			require.Equal(t, "a@x.com", msg.To)
			require.Equal(t, tc.subject, msg.Subject)
			require.Contains(t, msg.Body, "123456")
			require.Contains(t, msg.Body, "Sun, 01 Mar 2026 12:00:00 UTC")
		})
	}

	_, err := CodeMessage("a@x.com", "1", domain.PurposeRegister, exp)
	require.Error(t, err)
}

func TestInvitationMessage(t *testing.T) {
	msg, err := InvitationMessage("m@x.com", "Mia", "https://spacehub.test/v1/invitations/accept?token=abc", time.Now())
	require.NoError(t, err)
	require.Contains(t, msg.Body, "Hello Mia,")
	require.Contains(t, msg.Body, "token=abc")
}

func TestSMTPSender(t *testing.T) {
	var (
		gotAddr string
		gotTo   []string
		gotMsg  string
		gotAuth smtp.Auth
	)
	s := NewSMTPSender("mail.test:587", "user", "secret", "noreply@spacehub.test")
	s.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg, gotAuth = addr, to, string(msg), a
		return nil
	}

	err := s.Send(context.Background(), Message{To: "a@x.com", Subject: "Hi", Body: "line1\nline2"})
	require.NoError(t, err)
	require.Equal(t, "mail.test:587", gotAddr)
	require.Equal(t, []string{"a@x.com"}, gotTo)
	require.NotNil(t, gotAuth)
	require.Contains(t, gotMsg, "Subject: Hi\r\n")
	require.Contains(t, gotMsg, "Message-ID: <")
	require.True(t, strings.HasSuffix(gotMsg, "line1\r\nline2"))

	s.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("421 busy") }
	require.ErrorContains(t, s.Send(context.Background(), Message{To: "a@x.com"}), "421 busy")
}

func TestLogSender(t *testing.T) {
	require.NoError(t, LogSender{}.Send(context.Background(), Message{To: "a@x.com"}))
}
