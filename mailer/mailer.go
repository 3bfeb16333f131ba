package mailer

import (
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog"
)

// Mailer dispatches mail to an external delivery collaborator. Dispatch is
// best-effort: an error means the handoff failed, not that delivery failed.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends mail through a configured SMTP relay.
type SMTPMailer struct {
	host    string
	port    string
	account string
	pass    string
}

var _ Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer creates a mailer for the given relay. Credentials follow the
// usual PLAIN auth handshake.
func NewSMTPMailer(host, port, account, pass string) *SMTPMailer {
	return &SMTPMailer{host: host, port: port, account: account, pass: pass}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", m.account, to, subject, body)
	auth := smtp.PlainAuth("", m.account, m.pass, m.host)
	return smtp.SendMail(m.host+":"+m.port, auth, m.account, []string{to}, []byte(msg))
}

// LogMailer is the dev fallback used when SMTP is unconfigured: it logs the
// message instead of sending it and always reports success.
type LogMailer struct {
	Log zerolog.Logger
}

var _ Mailer = (*LogMailer)(nil)

func (m *LogMailer) Send(to, subject, body string) error {
	m.Log.Info().Str("to", to).Str("subject", subject).Str("body", body).Msg("mail dispatch (log only)")
	return nil
}
