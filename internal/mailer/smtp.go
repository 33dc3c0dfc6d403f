package mailer

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"nestaway/internal/config"
	"nestaway/internal/observability"
)

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender relays verification mail through an SMTP server.
type SMTPSender struct {
	addr     string
	host     string
	user     string
	password string
	from     string
	frontURL string
	send     sendMailFunc
}

func NewSMTPSender(cfg *config.Config) *SMTPSender {
	from := cfg.SMTPFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	return &SMTPSender{
		addr:     net.JoinHostPort(cfg.SMTPHost, strconv.Itoa(cfg.SMTPPort)),
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     from,
		frontURL: cfg.FrontURL,
		send:     smtp.SendMail,
	}
}

func (s *SMTPSender) SendVerificationCode(ctx context.Context, email, code string) error {
	span, _ := observability.StartClientSpan(ctx, "smtp", "send")
	defer span.End()

	msg := VerificationMessage(email, code, s.frontURL)
	var auth smtp.Auth
	if s.user != "" {
		auth = smtp.PlainAuth("", s.user, s.password, s.host)
	}
	err := s.send(s.addr, auth, s.from, []string{email}, encode(s.from, msg))
	record("smtp", err)
	if err != nil {
		span.SetError(err)
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func encode(from string, msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}
