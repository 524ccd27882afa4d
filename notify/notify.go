// Package notify emails a freshly issued certificate or CSR as a PEM
// attachment through an SMTP relay, using it as a delivery mechanism
// for the DER assembled by package x509write.
package notify

import (
	"bytes"
	"fmt"

	mail "github.com/wneessen/go-mail"
)

// Mailer sends issued certificates/CSRs to a recipient over SMTP.
type Mailer struct {
	host string
	port int
	from string
	auth *mail.SMTPAuthType
	user string
	pass string
}

// Option configures a Mailer.
type Option func(*Mailer)

// WithAuth enables SMTP authentication with the given credentials,
// auto-discovering the mechanism the server supports.
func WithAuth(user, pass string) Option {
	return func(m *Mailer) {
		auth := mail.SMTPAuthAutoDiscover
		m.auth = &auth
		m.user = user
		m.pass = pass
	}
}

// NewMailer returns a Mailer that dials host:port and sends as from.
func NewMailer(host string, port int, from string, opts ...Option) *Mailer {
	m := &Mailer{host: host, port: port, from: from}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SendCertificate emails pemBytes (a PEM-encoded certificate or CSR,
// from package pemutil) as an attachment named filename to rcpts.
func (m *Mailer) SendCertificate(rcpts []string, subject, filename string, pemBytes []byte) error {
	client, err := mail.NewClient(m.host, mail.WithPort(m.port), mail.WithTLSPolicy(mail.TLSOpportunistic))
	if err != nil {
		return fmt.Errorf("notify: creating SMTP client: %w", err)
	}
	if m.auth != nil {
		client.SetSMTPAuth(*m.auth)
		client.SetUsername(m.user)
		client.SetPassword(m.pass)
	}

	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("notify: setting from address: %w", err)
	}
	if err := msg.To(rcpts...); err != nil {
		return fmt.Errorf("notify: setting recipients: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, "A certificate artifact is attached to this message.")
	// AttachReader has no error return in this version of go-mail; a
	// malformed reader surfaces later, as a DialAndSend failure below.
	msg.AttachReader(filename, bytes.NewReader(pemBytes))

	if err := client.DialAndSend(msg); err != nil {
		return fmt.Errorf("notify: sending mail: %w", err)
	}
	return nil
}
