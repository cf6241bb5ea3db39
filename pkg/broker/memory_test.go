package broker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDeliversPublishedMessages(t *testing.T) {
	b := NewMemory()

	var got atomic.Value
	err := b.Consume("q1", func(_ context.Context, body []byte) error {
		got.Store(string(body))
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, b.Publish(context.Background(), "q1", []byte(`{"id":"1"}`)))
	require.True(t, b.Drain(2*time.Second))

	assert.Equal(t, `{"id":"1"}`, got.Load())
}

func TestMemoryBuffersUntilConsumerRegistered(t *testing.T) {
	b := NewMemory()

	require.NoError(t, b.Publish(context.Background(), "q1", []byte("a")))
	require.NoError(t, b.Publish(context.Background(), "q1", []byte("b")))

	var count atomic.Int64
	require.NoError(t, b.Consume("q1", func(_ context.Context, _ []byte) error {
		count.Add(1)
		return nil
	}))

	require.True(t, b.Drain(2*time.Second))
	assert.Equal(t, int64(2), count.Load())
}

func TestMemoryDropsOnPermanentError(t *testing.T) {
	b := NewMemory()

	var calls atomic.Int64
	require.NoError(t, b.Consume("q1", func(_ context.Context, _ []byte) error {
		calls.Add(1)
		return Permanent(errors.New("malformed"))
	}))

	require.NoError(t, b.Publish(context.Background(), "q1", []byte("junk")))
	require.True(t, b.Drain(2*time.Second))

	assert.Equal(t, int64(1), calls.Load(), "dropped message must not be redelivered")
}

func TestMemoryRequeuesOnTransientError(t *testing.T) {
	b := NewMemory()

	var calls atomic.Int64
	require.NoError(t, b.Consume("q1", func(_ context.Context, _ []byte) error {
		if calls.Add(1) == 1 {
			return errors.New("transient")
		}
		return nil
	}))

	require.NoError(t, b.Publish(context.Background(), "q1", []byte("payload")))
	require.True(t, b.Drain(2*time.Second))

	assert.Equal(t, int64(2), calls.Load(), "message must be redelivered once after a transient failure")
}

func TestMemoryRejectsSecondConsumer(t *testing.T) {
	b := NewMemory()

	handler := func(_ context.Context, _ []byte) error { return nil }
	require.NoError(t, b.Consume("q1", handler))

	err := b.Consume("q1", handler)
	assert.Error(t, err)
}

func TestPermanentWrapping(t *testing.T) {
	base := errors.New("boom")

	assert.True(t, IsPermanent(Permanent(base)))
	assert.False(t, IsPermanent(base))
	assert.Nil(t, Permanent(nil))
	assert.ErrorIs(t, Permanent(base), base)
}
