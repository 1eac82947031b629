package services

import (
	"fmt"
	"log"
	"net/smtp"

	"github.com/example/naturalpower/internal/config"
)

// Mailer delivers password-reset links. Implementations are injected so
// tests can substitute fakes.
type Mailer interface {
	SendPasswordReset(to, resetLink string) error
}

// NewMailer returns an SMTP mailer when transport is configured and a
// log-only fallback otherwise. The reset flow reports success either way to
// avoid email enumeration.
func NewMailer(cfg *config.Config) Mailer {
	if cfg.SMTPHost == "" || cfg.SMTPPort == 0 || cfg.SMTPFrom == "" {
		return &LogMailer{}
	}
	return &SMTPMailer{
		host: cfg.SMTPHost,
		port: cfg.SMTPPort,
		user: cfg.SMTPUser,
		pass: cfg.SMTPPass,
		from: cfg.SMTPFrom,
	}
}

// SMTPMailer sends reset mail over plain SMTP with optional auth.
type SMTPMailer struct {
	host string
	port int
	user string
	pass string
	from string
}

// SendPasswordReset delivers the reset link to the recipient.
func (m *SMTPMailer) SendPasswordReset(to, resetLink string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: Restablecer tu contraseña\r\n\r\n"+
		"Hola,\r\n\r\nPara restablecer tu contraseña, usa este enlace (expira en 30 minutos):\r\n%s\r\n\r\n"+
		"Si no solicitaste esto, ignora este mensaje.\r\n", m.from, to, resetLink)

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, m.host)
	}

	return smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg))
}

// LogMailer stands in when no SMTP transport is configured: the link is only
// logged so development setups keep working.
type LogMailer struct{}

// SendPasswordReset logs the reset link instead of sending it.
func (m *LogMailer) SendPasswordReset(to, resetLink string) error {
	log.Printf("[reset] SMTP not configured. Link for %s: %s", to, resetLink)
	return nil
}
