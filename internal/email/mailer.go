package email

import (
	"context"
	"fmt"

	mail "github.com/go-mail/mail"
)

// Sender envía correos transaccionales. Las implementaciones no deben
// bloquear más allá del timeout del contexto.
type Sender interface {
	SendInvite(ctx context.Context, to, companyName, role string) error
}

// SMTPConfig agrupa los datos del servidor saliente.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Configured indica si hay datos suficientes para enviar.
func (c SMTPConfig) Configured() bool {
	return c.Host != "" && c.From != ""
}

type SMTPSender struct {
	cfg SMTPConfig
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) SendInvite(ctx context.Context, to, companyName, role string) error {
	m := mail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Invitación a %s", companyName))
	m.SetBody("text/plain", fmt.Sprintf(
		"Has sido invitado a unirte a %s con el rol %s.\n\nIngresa a tu cuenta para aceptar la invitación.",
		companyName, role,
	))

	d := mail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)

	errCh := make(chan error, 1)
	go func() { errCh <- d.DialAndSend(m) }()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NopSender descarta los envíos. Se usa cuando SMTP no está configurado.
type NopSender struct{}

func (NopSender) SendInvite(context.Context, string, string, string) error { return nil }
