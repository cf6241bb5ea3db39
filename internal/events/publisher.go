package events

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/minibank/minibank/internal/domain/entity"
	"github.com/minibank/minibank/pkg/broker"
)

// IdentityPublisher emits the identity service's events. Publishing is
// at-most-effort: serialization and broker failures are logged and swallowed,
// so a broker outage can never fail or roll back the sign-up or confirmation
// that triggered the event.
type IdentityPublisher struct {
	Broker broker.MessageBroker
	Logger *logrus.Logger
}

func NewIdentityPublisher(b broker.MessageBroker, logger *logrus.Logger) *IdentityPublisher {
	return &IdentityPublisher{Broker: b, Logger: logger}
}

func (p *IdentityPublisher) PublishUserCreated(ctx context.Context, u *entity.User) {
	publish(ctx, p.Broker, p.Logger, QueueUserCreated, ViewOf(u))
}

func (p *IdentityPublisher) PublishEmailConfirmed(ctx context.Context, u *entity.User) {
	publish(ctx, p.Broker, p.Logger, QueueEmailConfirmed, ViewOf(u))
}

// LedgerPublisher emits the ledger service's events, with the same
// at-most-effort policy as the identity publisher.
type LedgerPublisher struct {
	Broker broker.MessageBroker
	Logger *logrus.Logger
}

func NewLedgerPublisher(b broker.MessageBroker, logger *logrus.Logger) *LedgerPublisher {
	return &LedgerPublisher{Broker: b, Logger: logger}
}

func (p *LedgerPublisher) PublishAccountCreated(ctx context.Context, user UserView) {
	publish(ctx, p.Broker, p.Logger, QueueAccountCreated, user)
}

func publish(ctx context.Context, b broker.MessageBroker, logger *logrus.Logger, queue string, view UserView) {
	body, err := json.Marshal(view)
	if err != nil {
		logger.WithError(err).WithField("queue", queue).Error("failed to serialize event")
		return
	}
	if err := b.Publish(ctx, queue, body); err != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"queue":   queue,
			"user_id": view.ID,
		}).Error("failed to publish event")
		return
	}
	logger.WithFields(logrus.Fields{
		"queue":   queue,
		"user_id": view.ID,
	}).Info("event published")
}
