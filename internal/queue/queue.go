package queue

import (
	"context"
	"time"
)

// Task is one queued unit of analysis work: a converted audio excerpt
// awaiting transcription. Tasks are consumed at most once and are never
// requeued after a worker picks them up.
type Task struct {
	Channel   string
	AudioPath string
	Start     time.Time
}

// Bounded is a fixed-capacity FIFO of analysis tasks shared by every
// channel watcher. Producers use the non-blocking TryEnqueue; the single
// dispatch loop blocks on Dequeue.
type Bounded struct {
	tasks chan Task
}

// NewBounded creates a queue holding at most capacity tasks. Capacity below
// one is raised to one.
func NewBounded(capacity int) *Bounded {
	if capacity < 1 {
		capacity = 1
	}
	return &Bounded{tasks: make(chan Task, capacity)}
}

// TryEnqueue offers a task without blocking. It reports false when the
// queue is full; the caller decides what to do with the rejected task.
func (q *Bounded) TryEnqueue(task Task) bool {
	select {
	case q.tasks <- task:
		return true
	default:
		return false
	}
}

// Dequeue blocks until a task is available or the context is cancelled.
func (q *Bounded) Dequeue(ctx context.Context) (Task, error) {
	select {
	case task := <-q.tasks:
		return task, nil
	case <-ctx.Done():
		return Task{}, ctx.Err()
	}
}

// Len reports the number of tasks currently queued.
func (q *Bounded) Len() int {
	return len(q.tasks)
}

// Cap reports the configured capacity.
func (q *Bounded) Cap() int {
	return cap(q.tasks)
}
