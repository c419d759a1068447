package queue_test

import (
	"context"
	"testing"
	"time"

	"tvscribe/internal/queue"
)

func TestTryEnqueueRespectsCapacity(t *testing.T) {
	q := queue.NewBounded(2)

	for i := 0; i < 2; i++ {
		if !q.TryEnqueue(queue.Task{Channel: "itv"}) {
			t.Fatalf("enqueue %d should succeed", i)
		}
	}
	if q.TryEnqueue(queue.Task{Channel: "itv"}) {
		t.Fatal("third enqueue should be rejected")
	}
	if q.Len() != 2 {
		t.Fatalf("expected length 2, got %d", q.Len())
	}
}

func TestTryEnqueueNeverBlocks(t *testing.T) {
	q := queue.NewBounded(1)
	q.TryEnqueue(queue.Task{})

	done := make(chan struct{})
	go func() {
		q.TryEnqueue(queue.Task{})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("full-queue offer blocked the caller")
	}
}

func TestDequeuePreservesFIFOOrder(t *testing.T) {
	q := queue.NewBounded(3)
	base := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		q.TryEnqueue(queue.Task{Channel: "itv", Start: base.Add(time.Duration(i) * 8 * time.Second)})
	}

	ctx := context.Background()
	prev := time.Time{}
	for i := 0; i < 3; i++ {
		task, err := q.Dequeue(ctx)
		if err != nil {
			t.Fatalf("dequeue: %v", err)
		}
		if !task.Start.After(prev) {
			t.Fatalf("start times not strictly increasing: %v then %v", prev, task.Start)
		}
		prev = task.Start
	}
}

func TestDequeueHonorsCancellation(t *testing.T) {
	q := queue.NewBounded(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := q.Dequeue(ctx); err == nil {
		t.Fatal("expected context error from cancelled dequeue")
	}
}

func TestCapacityFloor(t *testing.T) {
	if got := queue.NewBounded(0).Cap(); got != 1 {
		t.Fatalf("expected capacity floor of 1, got %d", got)
	}
}
