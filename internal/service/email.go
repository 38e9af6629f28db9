package service

import (
	"context"
	"fmt"

	"hr-onboarding-backend/internal/config"
	"hr-onboarding-backend/internal/logger"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/wneessen/go-mail"
)

// NewEmailSender picks the delivery backend named by cfg.Email.Provider.
func NewEmailSender(cfg *config.Config) (EmailSender, error) {
	switch cfg.Email.Provider {
	case "smtp":
		if cfg.SMTP.Host == "" {
			return nil, fmt.Errorf("SMTP host is required")
		}
		return &smtpSender{cfg: cfg.SMTP, fromAddress: cfg.Email.FromAddress, fromName: cfg.Email.FromName}, nil
	case "sendgrid":
		if cfg.SendGrid.APIKey == "" {
			return nil, fmt.Errorf("SendGrid API key is required")
		}
		return &sendGridSender{client: sendgrid.NewSendClient(cfg.SendGrid.APIKey), fromAddress: cfg.Email.FromAddress, fromName: cfg.Email.FromName}, nil
	case "log", "":
		return logSender{}, nil
	default:
		return nil, fmt.Errorf("unknown email provider: %s", cfg.Email.Provider)
	}
}

type smtpSender struct {
	cfg         config.SMTPConfig
	fromAddress string
	fromName    string
}

func (s *smtpSender) Send(ctx context.Context, to, toName, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromAddress); err != nil {
		return fmt.Errorf("setting from address: %w", err)
	}
	if err := msg.AddToFormat(toName, to); err != nil {
		return fmt.Errorf("setting to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	opts := []mail.Option{mail.WithPort(s.cfg.Port)}
	if s.cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		if s.cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}
	if s.cfg.User != "" && s.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.User),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	logger.ExternalServiceCall("smtp", "DialAndSend", "to", to, "subject", subject)
	err = client.DialAndSendWithContext(ctx, msg)
	logger.ExternalServiceResult("smtp", "DialAndSend", err, "to", to)
	if err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	return nil
}

type sendGridSender struct {
	client      *sendgrid.Client
	fromAddress string
	fromName    string
}

func (s *sendGridSender) Send(ctx context.Context, to, toName, subject, body string) error {
	from := sgmail.NewEmail(s.fromName, s.fromAddress)
	recipient := sgmail.NewEmail(toName, to)
	message := sgmail.NewSingleEmailPlainText(from, subject, recipient, body)

	logger.ExternalServiceCall("sendgrid", "Send", "to", to, "subject", subject)
	response, err := s.client.SendWithContext(ctx, message)
	logger.ExternalServiceResult("sendgrid", "Send", err, "to", to)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

// logSender writes messages to the log instead of delivering them.
type logSender struct{}

func (logSender) Send(ctx context.Context, to, toName, subject, body string) error {
	logger.InfoContext(ctx, "Email (not sent)", "to", to, "subject", subject, "body", body)
	return nil
}
