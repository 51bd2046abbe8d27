package mail

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SMTPSender relays messages through an SMTP server with PLAIN auth.
type SMTPSender struct {
	Addr     string // host:port
	Username string
	Password string
	From     string

	// send is swapped in tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPSender(addr, username, password, from string) *SMTPSender {
	return &SMTPSender{Addr: addr, Username: username, Password: password, From: from, send: smtp.SendMail}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	var auth smtp.Auth
	if s.Username != "" {
		host, _, err := net.SplitHostPort(s.Addr)
		if err != nil {
			return fmt.Errorf("mail: smtp addr: %w", err)
		}
		auth = smtp.PlainAuth("", s.Username, s.Password, host)
	}

	send := s.send
	if send == nil {
		send = smtp.SendMail
	}
	if err := send(s.Addr, auth, s.From, []string{msg.To}, buildMIME(s.From, msg, time.Now())); err != nil {
		return fmt.Errorf("mail: smtp send: %w", err)
	}
	return nil
}

func buildMIME(from string, msg Message, now time.Time) []byte {
	var b bytes.Buffer
	header := func(k, v string) { fmt.Fprintf(&b, "%s: %s\r\n", k, v) }

	header("From", from)
	header("To", msg.To)
	header("Subject", msg.Subject)
	header("Date", now.UTC().Format(time.RFC1123Z))
	header("Message-ID", "<"+msg.ID+"@spacehub>")
	header("MIME-Version", "1.0")
	header("Content-Type", `text/plain; charset="utf-8"`)
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return b.Bytes()
}
