// Package mail delivers account notifications (one-time codes and manager
// invitations) through a pluggable channel.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"text/template"
	"time"

	"github.com/aussiebroadwan/spacehub/internal/accounts/domain"
)

// Message is a rendered plain-text email.
type Message struct {
	ID      string `json:"id"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Sender is implemented by every delivery channel.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

var (
	codeTmpl = template.Must(template.New("code").Parse(
		`Hello,

{{.Intro}}

    {{.Code}}

The code expires at {{.ExpiresAt}}. If you did not request it you can ignore this email.
`))

	inviteTmpl = template.Must(template.New("invite").Parse(
		`Hello{{if .Name}} {{.Name}}{{end}},

You have been invited to manage a branch on spacehub. Open the link below to
accept the invitation and finish setting up your account:

{{.Link}}

The invitation expires at {{.ExpiresAt}}.
`))
)

var codeSubjects = map[domain.Purpose]struct{ subject, intro string }{
	domain.PurposeVerify: {"Verify your email address", "Use this code to verify your email address:"},
	domain.PurposeReset:  {"Reset your password", "Use this code to reset your password:"},
}

// CodeMessage renders the email carrying a one-time code.
func CodeMessage(to, code string, purpose domain.Purpose, expiresAt time.Time) (Message, error) {
	c, ok := codeSubjects[purpose]
	if !ok {
		return Message{}, fmt.Errorf("mail: no template for purpose %q", purpose)
	}
	body, err := render(codeTmpl, map[string]string{
		"Intro":     c.intro,
		"Code":      code,
		"ExpiresAt": expiresAt.UTC().Format(time.RFC1123),
	})
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: c.subject, Body: body}, nil
}

// InvitationMessage renders the manager invitation email.
func InvitationMessage(to, name, link string, expiresAt time.Time) (Message, error) {
	body, err := render(inviteTmpl, map[string]string{
		"Name":      name,
		"Link":      link,
		"ExpiresAt": expiresAt.UTC().Format(time.RFC1123),
	})
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: "You're invited to spacehub", Body: body}, nil
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("mail: render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}
