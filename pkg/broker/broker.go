package broker

import (
	"context"
	"errors"
)

// Handler processes one delivered message. Returning nil acknowledges the
// message. Returning an error wrapped with Permanent acknowledges (drops) it;
// any other error triggers a negative acknowledgment with requeue, causing
// redelivery.
type Handler func(ctx context.Context, body []byte) error

// MessageBroker wraps a durable queue transport. Publish is synchronous and
// best-effort: an error means the event may not have been delivered, and
// callers must decide whether that failure may fail their own operation.
// Consume registers a handler invoked once per delivered message with manual
// acknowledgment; a setup error is fatal to that subscription.
type MessageBroker interface {
	Publish(ctx context.Context, queue string, body []byte) error
	Consume(queue string, handler Handler) error
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as non-retryable: the delivery is acknowledged and
// dropped instead of being requeued. Redelivery cannot fix a malformed
// payload, and the current policy treats domain failures the same way.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}
