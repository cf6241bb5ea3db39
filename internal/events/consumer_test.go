package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minibank/minibank/internal/domain/entity"
	"github.com/minibank/minibank/pkg/broker"
)

type openerRecorder struct {
	mu    sync.Mutex
	calls []UserView
	err   error
}

func (r *openerRecorder) OpenAccount(_ context.Context, user UserView) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, user)
	if r.err != nil {
		return nil, r.err
	}
	acc := &entity.Account{}
	acc.Open(user.ID)
	return acc, nil
}

func (r *openerRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

type senderRecorder struct {
	mu           sync.Mutex
	confirmation []UserView
	welcome      []UserView
}

func (r *senderRecorder) SendConfirmationEmail(_ context.Context, user UserView) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.confirmation = append(r.confirmation, user)
	return nil
}

func (r *senderRecorder) SendWelcomeEmail(_ context.Context, user UserView) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.welcome = append(r.welcome, user)
	return nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestLedgerConsumerOpensAccount(t *testing.T) {
	mb := broker.NewMemory()
	rec := &openerRecorder{}
	c := NewLedgerConsumer(mb, func() AccountOpener { return rec }, quietLogger())
	require.NoError(t, c.Start(QueueEmailConfirmed))

	view := UserView{ID: "u1", Name: "Alice", Email: "alice@example.com", Confirmed: true}
	body, _ := json.Marshal(view)
	require.NoError(t, mb.Publish(context.Background(), QueueEmailConfirmed, body))

	require.True(t, mb.Drain(time.Second))
	require.Equal(t, 1, rec.count())
	assert.Equal(t, view, rec.calls[0])
}

func TestLedgerConsumerDropsMalformedBody(t *testing.T) {
	mb := broker.NewMemory()
	rec := &openerRecorder{}
	c := NewLedgerConsumer(mb, func() AccountOpener { return rec }, quietLogger())
	require.NoError(t, c.Start(QueueEmailConfirmed))

	require.NoError(t, mb.Publish(context.Background(), QueueEmailConfirmed, []byte("{not json")))

	require.True(t, mb.Drain(time.Second), "malformed message must be dropped, not redelivered")
	assert.Zero(t, rec.count(), "malformed message must not reach the domain")
}

func TestLedgerConsumerDropsDomainFailure(t *testing.T) {
	mb := broker.NewMemory()
	rec := &openerRecorder{err: errors.New("account already exists")}
	c := NewLedgerConsumer(mb, func() AccountOpener { return rec }, quietLogger())
	require.NoError(t, c.Start(QueueEmailConfirmed))

	body, _ := json.Marshal(UserView{ID: "u1"})
	require.NoError(t, mb.Publish(context.Background(), QueueEmailConfirmed, body))

	require.True(t, mb.Drain(time.Second), "domain failure must be dropped, not retried forever")
	assert.Equal(t, 1, rec.count())
}

func TestMailerConsumerRoutesByQueue(t *testing.T) {
	mb := broker.NewMemory()
	rec := &senderRecorder{}
	c := NewMailerConsumer(mb, func() EmailSender { return rec }, quietLogger())
	require.NoError(t, c.Start())

	created, _ := json.Marshal(UserView{ID: "u1", Email: "alice@example.com"})
	opened, _ := json.Marshal(UserView{ID: "u1", Email: "alice@example.com", Confirmed: true})
	require.NoError(t, mb.Publish(context.Background(), QueueUserCreated, created))
	require.NoError(t, mb.Publish(context.Background(), QueueAccountCreated, opened))

	require.True(t, mb.Drain(time.Second))
	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.confirmation, 1)
	require.Len(t, rec.welcome, 1)
	assert.False(t, rec.confirmation[0].Confirmed)
	assert.True(t, rec.welcome[0].Confirmed)
}

func TestMailerConsumerFreshScopePerMessage(t *testing.T) {
	mb := broker.NewMemory()
	var mu sync.Mutex
	scopes := 0
	c := NewMailerConsumer(mb, func() EmailSender {
		mu.Lock()
		scopes++
		mu.Unlock()
		return &senderRecorder{}
	}, quietLogger())
	require.NoError(t, c.Start())

	body, _ := json.Marshal(UserView{ID: "u1", Email: "alice@example.com"})
	require.NoError(t, mb.Publish(context.Background(), QueueUserCreated, body))
	require.NoError(t, mb.Publish(context.Background(), QueueUserCreated, body))

	require.True(t, mb.Drain(time.Second))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, scopes)
}
