// Package email sends transactional mail over SMTP.
package email

import (
	"fmt"
	"net"
	"net/smtp"

	"sonique/config"
)

// Mailer delivers a single message.
type Mailer interface {
	Send(to, subject, body string) error
}

type smtpMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
}

// NewSMTPMailer builds a Mailer from the SMTP settings in cfg.
func NewSMTPMailer(cfg *config.Config) Mailer {
	return &smtpMailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     cfg.SMTPFrom,
	}
}

func (m *smtpMailer) Send(to, subject, body string) error {
	addr := net.JoinHostPort(m.host, m.port)
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n%s\r\n",
		m.from, to, subject, body)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}
	if err := smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

// ResetEmailBody renders the plaintext password reset message.
func ResetEmailBody(appName, frontendURL, token string) string {
	return fmt.Sprintf(
		"You requested a password reset for your %s account.\n\n"+
			"Open the link below to choose a new password:\n\n"+
			"%s/reset-password?token=%s\n\n"+
			"The link expires soon. If you did not request this, ignore this email.\n",
		appName, frontendURL, token)
}
