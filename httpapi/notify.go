package httpapi

import "log/slog"

// CertMailer emails an issued certificate/CSR PEM as an attachment.
// Satisfied by *notify.Mailer; kept as an interface here so this
// package does not need to import notify's SMTP dependency directly.
type CertMailer interface {
	SendCertificate(rcpts []string, subject, filename string, pemBytes []byte) error
}

var certMailer CertMailer

// SetCertMailer installs the mailer used to notify recipients listed
// in a CertificateRequest's NotifyEmails field. Passing nil disables
// notification; this is the default until a caller (cmd/certforge's
// serve command, when SMTP is configured) installs one.
func SetCertMailer(m CertMailer) {
	certMailer = m
}

// notifyCertificateIssued emails pemBytes to rcpts, if any are set
// and a mailer has been installed. Failures are logged,
// not returned: a missing/unreachable SMTP relay must not fail an
// otherwise-successful certificate issuance.
func notifyCertificateIssued(requestID, subject string, rcpts []string, pemBytes []byte) {
	if certMailer == nil || len(rcpts) == 0 {
		return
	}
	err := certMailer.SendCertificate(rcpts, "Certificate issued: "+subject, "certificate.pem", pemBytes)
	if err != nil {
		slog.Error("failed to email issued certificate", "request_id", requestID, "error", err)
		return
	}
	slog.Info("emailed issued certificate", "request_id", requestID, "recipients", len(rcpts))
}
