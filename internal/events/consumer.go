package events

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/minibank/minibank/internal/domain/entity"
	"github.com/minibank/minibank/pkg/broker"
)

// AccountOpener is the slice of the ledger service a consumer needs.
type AccountOpener interface {
	OpenAccount(ctx context.Context, user UserView) (*entity.Account, error)
}

// EmailSender is the slice of the notification service a consumer needs.
type EmailSender interface {
	SendConfirmationEmail(ctx context.Context, user UserView) error
	SendWelcomeEmail(ctx context.Context, user UserView) error
}

// LedgerConsumer opens an account for each user event it receives. The scope
// factory yields a fresh service (and with it a fresh unit of work against
// the store) per message, since the store client must not be shared across
// concurrent deliveries.
//
// Failure policy: malformed bodies are dropped because a producer bug will
// not self-correct via redelivery; domain failures are dropped too, since
// OpenAccount is idempotent and the system has no dead-letter path.
type LedgerConsumer struct {
	Broker broker.MessageBroker
	Scope  func() AccountOpener
	Logger *logrus.Logger
}

func NewLedgerConsumer(b broker.MessageBroker, scope func() AccountOpener, logger *logrus.Logger) *LedgerConsumer {
	return &LedgerConsumer{Broker: b, Scope: scope, Logger: logger}
}

// Start registers the consumer on queue. Deployments gated on email
// confirmation listen on queue_email_confirmed; deployments provisioning on
// sign-up also listen on queue_user_created with the same handler.
func (c *LedgerConsumer) Start(queue string) error {
	c.Logger.WithField("queue", queue).Info("starting ledger consumer")
	return c.Broker.Consume(queue, c.handle(queue))
}

func (c *LedgerConsumer) handle(queue string) broker.Handler {
	return func(ctx context.Context, body []byte) error {
		var user UserView
		if err := json.Unmarshal(body, &user); err != nil {
			c.Logger.WithError(err).WithField("queue", queue).Warn("dropping malformed message")
			return broker.Permanent(err)
		}

		svc := c.Scope()
		if _, err := svc.OpenAccount(ctx, user); err != nil {
			c.Logger.WithError(err).WithFields(logrus.Fields{
				"queue":   queue,
				"user_id": user.ID,
			}).Error("failed to open account")
			return broker.Permanent(err)
		}

		c.Logger.WithFields(logrus.Fields{
			"queue":   queue,
			"user_id": user.ID,
		}).Info("account opened")
		return nil
	}
}

// MailerConsumer reacts to user and account events by sending the matching
// email. Same failure policy as the ledger consumer; note that a redelivered
// queue_user_created resends the confirmation email, as sends are not
// deduplicated.
type MailerConsumer struct {
	Broker broker.MessageBroker
	Scope  func() EmailSender
	Logger *logrus.Logger
}

func NewMailerConsumer(b broker.MessageBroker, scope func() EmailSender, logger *logrus.Logger) *MailerConsumer {
	return &MailerConsumer{Broker: b, Scope: scope, Logger: logger}
}

// Start registers one consumer per queue the notification service reacts to.
func (c *MailerConsumer) Start() error {
	if err := c.Broker.Consume(QueueUserCreated, c.handle(QueueUserCreated, EmailSender.SendConfirmationEmail)); err != nil {
		return err
	}
	c.Logger.WithField("queue", QueueUserCreated).Info("starting mailer consumer")

	if err := c.Broker.Consume(QueueAccountCreated, c.handle(QueueAccountCreated, EmailSender.SendWelcomeEmail)); err != nil {
		return err
	}
	c.Logger.WithField("queue", QueueAccountCreated).Info("starting mailer consumer")
	return nil
}

func (c *MailerConsumer) handle(queue string, send func(EmailSender, context.Context, UserView) error) broker.Handler {
	return func(ctx context.Context, body []byte) error {
		var user UserView
		if err := json.Unmarshal(body, &user); err != nil {
			c.Logger.WithError(err).WithField("queue", queue).Warn("dropping malformed message")
			return broker.Permanent(err)
		}

		svc := c.Scope()
		if err := send(svc, ctx, user); err != nil {
			c.Logger.WithError(err).WithFields(logrus.Fields{
				"queue": queue,
				"email": user.Email,
			}).Error("failed to send email")
			return broker.Permanent(err)
		}

		c.Logger.WithFields(logrus.Fields{
			"queue": queue,
			"email": user.Email,
		}).Info("email sent")
		return nil
	}
}
