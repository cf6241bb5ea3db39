package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/minibank/minibank/internal/events"
	"github.com/minibank/minibank/pkg/mailer"
)

// EmailService sends the notification service's emails. With no Mailgun
// client configured it logs the message instead of sending, which keeps local
// runs working without an outbound mail account.
type EmailService struct {
	Mailgun    *mailer.Mailgun // nil when sending is disabled
	ConfirmURL string          // base URL, user id is appended
	Logger     *logrus.Logger
}

func NewEmailService(mg *mailer.Mailgun, confirmURL string, logger *logrus.Logger) *EmailService {
	return &EmailService{Mailgun: mg, ConfirmURL: confirmURL, Logger: logger}
}

func (s *EmailService) SendConfirmationEmail(ctx context.Context, user events.UserView) error {
	subject, body := mailer.ConfirmationEmail(user.Name, s.ConfirmURL+"/"+user.ID)
	return s.send(ctx, user.Email, subject, body)
}

func (s *EmailService) SendWelcomeEmail(ctx context.Context, user events.UserView) error {
	subject, body := mailer.WelcomeEmail(user.Name)
	return s.send(ctx, user.Email, subject, body)
}

func (s *EmailService) send(ctx context.Context, to, subject, body string) error {
	if s.Mailgun == nil {
		s.Logger.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("mail sending disabled, logging instead")
		return nil
	}
	return s.Mailgun.Send(ctx, to, subject, body)
}

var _ events.EmailSender = (*EmailService)(nil)
