package notification

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrQueueFull = errors.New("notification queue is full")

// Publisher enqueues a message for asynchronous delivery.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

type Queue interface {
	Publisher
	// Dequeue blocks for at most timeout and returns (nil, nil) when nothing
	// arrived.
	Dequeue(ctx context.Context, timeout time.Duration) (*Message, error)
	DeadLetter(ctx context.Context, msg Message) error
}

// MemoryQueue is a bounded in-process queue used when no Redis is configured.
type MemoryQueue struct {
	ch chan Message

	mu   sync.Mutex
	dead []Message
}

func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 256
	}
	return &MemoryQueue{ch: make(chan Message, size)}
}

func (q *MemoryQueue) Publish(ctx context.Context, msg Message) error {
	select {
	case q.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context, timeout time.Duration) (*Message, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case msg := <-q.ch:
		return &msg, nil
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (q *MemoryQueue) DeadLetter(_ context.Context, msg Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.dead = append(q.dead, msg)
	return nil
}

func (q *MemoryQueue) DeadLetters() []Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Message, len(q.dead))
	copy(out, q.dead)
	return out
}
