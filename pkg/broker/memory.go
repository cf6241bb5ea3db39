package broker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Memory is an in-process MessageBroker for tests and broker-less local runs.
// Each queue gets one consumer and a dedicated delivery goroutine; a requeued
// message goes to the back of the queue.
type Memory struct {
	mu       sync.Mutex
	queues   map[string]*memQueue
	inflight sync.WaitGroup
}

type memQueue struct {
	msgs     chan []byte
	consumed bool
}

func NewMemory() *Memory {
	return &Memory{queues: make(map[string]*memQueue)}
}

func (b *Memory) queue(name string) *memQueue {
	b.mu.Lock()
	defer b.mu.Unlock()
	q, ok := b.queues[name]
	if !ok {
		q = &memQueue{msgs: make(chan []byte, 256)}
		b.queues[name] = q
	}
	return q
}

func (b *Memory) Publish(_ context.Context, queue string, body []byte) error {
	q := b.queue(queue)
	b.inflight.Add(1)
	select {
	case q.msgs <- body:
		return nil
	default:
		b.inflight.Done()
		return errors.New("queue full")
	}
}

func (b *Memory) Consume(queue string, handler Handler) error {
	q := b.queue(queue)

	b.mu.Lock()
	if q.consumed {
		b.mu.Unlock()
		return fmt.Errorf("queue %s already has a consumer", queue)
	}
	q.consumed = true
	b.mu.Unlock()

	go func() {
		for body := range q.msgs {
			err := handler(context.Background(), body)
			if err != nil && !IsPermanent(err) {
				// Redeliver; the message stays in flight.
				select {
				case q.msgs <- body:
					continue
				default:
				}
			}
			b.inflight.Done()
		}
	}()
	return nil
}

// Drain blocks until every published message has been acknowledged or
// dropped, or the timeout elapses. It reports whether the queues emptied.
func (b *Memory) Drain(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		b.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
