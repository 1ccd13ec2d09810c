package notification

import (
	"context"
	"errors"
	"net/smtp"
	"strings"

	"storefront-be/internal/logger"

	"go.uber.org/zap"
)

var ErrNoRecipient = errors.New("notification has no recipient")

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type SMTPSender struct {
	addr     string
	auth     smtp.Auth
	from     string
	sendMail sendMailFunc
}

func NewSMTPSender(host, port, username, password, from string) *SMTPSender {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPSender{
		addr:     host + ":" + port,
		auth:     auth,
		from:     from,
		sendMail: smtp.SendMail,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if msg.RecipientEmail == "" {
		return ErrNoRecipient
	}

	subject, body, err := Render(msg)
	if err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString("From: " + s.from + "\r\n")
	b.WriteString("To: " + msg.RecipientEmail + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)

	return s.sendMail(s.addr, s.auth, s.from, []string{msg.RecipientEmail}, []byte(b.String()))
}

// LogSender writes rendered notifications to the log instead of mailing
// them. It is used when no SMTP host is configured.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, msg Message) error {
	subject, body, err := Render(msg)
	if err != nil {
		return err
	}
	logger.FromCtx(ctx).Info("notification",
		zap.String("id", msg.ID),
		zap.String("kind", string(msg.Kind)),
		zap.String("to", msg.RecipientEmail),
		zap.String("subject", subject),
		zap.Int("body_bytes", len(body)),
	)
	return nil
}
