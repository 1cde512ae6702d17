package infra

import (
	"fmt"
	"net/smtp"

	"crmventas/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer sends plain notification emails through the configured SMTP relay.
type Mailer struct {
	host     string
	user     string
	password string
	addr     string
	cb       *CircuitBreaker
}

func NewMailer(cfg *config.Config, cb *CircuitBreaker) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		cb:       cb,
	}
}

// Enabled reports whether an SMTP host is configured.
func (m *Mailer) Enabled() bool { return m != nil && m.host != "" }

// Breaker exposes the relay's circuit breaker so retries can back off while it is open.
func (m *Mailer) Breaker() *CircuitBreaker { return m.cb }

// Send delivers a text email, with an optional HTML alternative.
func (m *Mailer) Send(to, subject, text, html string) error {
	if !m.Enabled() {
		return fmt.Errorf("mailer: SMTP no configurado")
	}
	e := email.NewEmail()
	e.From = m.user
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(text)
	if html != "" {
		e.HTML = []byte(html)
	}

	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	return m.cb.Execute(func() error {
		return e.Send(m.addr, auth)
	})
}
