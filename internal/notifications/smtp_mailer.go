package notifications

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// SMTPMailer sends the reset code over plain SMTP with AUTH. Single
// attempt; the caller decides what a failure means.
type SMTPMailer struct {
	cfg SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) SendPasswordResetCode(ctx context.Context, in PasswordResetInput) error {
	subject := "Your password reset code (valid for 10 min)"

	body := fmt.Sprintf(
		"Hi %s,\n We received a request to reset the password on your E-shop Account. \n %s \n Enter this code to complete the reset. \n Thanks for helping us keep your account secure.\n The E-shop Team",
		in.Name, in.Code,
	)

	msg := strings.Join([]string{
		"From: " + m.cfg.From,
		"To: " + in.Email,
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	}

	// net/smtp has no context hooks; honour cancellation before dialing.
	if err := ctx.Err(); err != nil {
		return err
	}

	return smtp.SendMail(addr, auth, m.cfg.From, []string{in.Email}, []byte(msg))
}
