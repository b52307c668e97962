// Package mailer envia e-mails via SMTP
package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/vfg2006/invoice-report-api/internal/config"
	"github.com/vfg2006/invoice-report-api/pkg/log"
	"github.com/wneessen/go-mail"
)

//go:generate mockgen -source=mailer.go -destination=mocks/mailer.go -package=mocks

var errNoRecipients = errors.New("mailer: nenhum destinatário informado")

type Email struct {
	To      []string
	Subject string
	Text    string
	HTML    string // vazio reaproveita Text
}

// Result indica o resultado do envio; falhas nunca são retornadas como erro
type Result struct {
	Delivered bool
	Err       error
}

type Sender interface {
	SendEmail(ctx context.Context, email Email) Result
}

// transport é o subconjunto de *mail.Client usado pelo sender
type transport interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

var _ Sender = (*SMTPSender)(nil)

type SMTPSender struct {
	client transport
	from   string
}

func NewSMTPSender(cfg config.Mail) (*SMTPSender, error) {
	opts := []mail.Option{mail.WithPort(cfg.Port)}

	if cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.User),
			mail.WithPassword(cfg.Password),
		)
	}

	if cfg.Secure {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("mailer: erro ao criar client SMTP: %w", err)
	}

	return &SMTPSender{client: client, from: cfg.From}, nil
}

func (s *SMTPSender) SendEmail(ctx context.Context, email Email) Result {
	logger := log.ForContext(ctx).WithFields(log.Fields{
		"to":      email.To,
		"subject": email.Subject,
	})

	msg, err := s.buildMessage(email)
	if err != nil {
		logger.WithError(err).Error("❌ Erro ao montar e-mail")
		return Result{Err: err}
	}

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		logger.WithError(err).Error("❌ Erro ao enviar e-mail")
		return Result{Err: fmt.Errorf("mailer: erro ao enviar: %w", err)}
	}

	logger.Info("📧 E-mail enviado")
	return Result{Delivered: true}
}

func (s *SMTPSender) buildMessage(email Email) (*mail.Msg, error) {
	if len(email.To) == 0 {
		return nil, errNoRecipients
	}

	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return nil, fmt.Errorf("mailer: remetente inválido %q: %w", s.from, err)
	}
	if err := msg.To(email.To...); err != nil {
		return nil, fmt.Errorf("mailer: destinatário inválido: %w", err)
	}

	text, html := bodies(email)
	msg.Subject(email.Subject)
	msg.SetBodyString(mail.TypeTextPlain, text)
	msg.AddAlternativeString(mail.TypeTextHTML, html)

	return msg, nil
}

func bodies(email Email) (text string, html string) {
	if email.HTML == "" {
		return email.Text, email.Text
	}
	return email.Text, email.HTML
}
