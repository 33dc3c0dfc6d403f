// Package mailer delivers verification codes to users.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"nestaway/internal/config"
	"nestaway/internal/middleware"
	"nestaway/internal/observability"
)

// Sender delivers a verification code to an email address.
type Sender interface {
	SendVerificationCode(ctx context.Context, email, code string) error
}

// Message is a rendered verification email.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

const verificationSubject = "Verify Your Email"

// VerificationMessage renders the email carrying code. frontURL, when set,
// adds a link to the client's verification page.
func VerificationMessage(to, code, frontURL string) Message {
	var b strings.Builder
	b.WriteString("<h2>Your NestAway verification code:</h2>")
	fmt.Fprintf(&b, "<p><strong>%s</strong></p>", code)
	b.WriteString("<p>The code expires in 10 minutes.</p>")
	if frontURL != "" {
		fmt.Fprintf(&b, `<p><a href="%s/verify">Verify your email</a></p>`, strings.TrimRight(frontURL, "/"))
	}
	return Message{To: to, Subject: verificationSubject, Body: b.String()}
}

// New builds the Sender selected by MAILER_DRIVER.
func New(cfg *config.Config) (Sender, error) {
	switch cfg.MailerDriver {
	case "smtp":
		return NewSMTPSender(cfg), nil
	case "amqp":
		return NewAMQPSender(cfg.AMQPURL, cfg.AMQPMailQueue, cfg.FrontURL)
	case "log", "":
		return NewLogSender(cfg.FrontURL), nil
	default:
		return nil, fmt.Errorf("unsupported MAILER_DRIVER %q", cfg.MailerDriver)
	}
}

func record(driver string, err error) {
	result := observability.ResultOK
	if err != nil {
		result = observability.ResultError
	}
	observability.MailDispatch.WithLabelValues(driver, result).Inc()
}

// LogSender writes codes to the application log. Development only.
type LogSender struct {
	frontURL string
}

func NewLogSender(frontURL string) *LogSender {
	return &LogSender{frontURL: frontURL}
}

func (s *LogSender) SendVerificationCode(ctx context.Context, email, code string) error {
	msg := VerificationMessage(email, code, s.frontURL)
	middleware.Logger.InfoContext(ctx, "verification code issued",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("code", code),
	)
	record("log", nil)
	return nil
}
