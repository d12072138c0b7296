package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/opinionboard/opinion-service/internal/adapters/memory"
	"github.com/opinionboard/opinion-service/internal/ports"
)

type recordingPublisher struct {
	mu        sync.Mutex
	published []string
	failTypes map[string]bool
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, _ []byte, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failTypes[eventType] {
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, eventType)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func enqueue(t *testing.T, outbox *memory.OutboxStore, eventType string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	err := outbox.Enqueue(context.Background(), ports.OutboxEvent{
		EventID:      id,
		EventType:    eventType,
		PartitionKey: "post-1",
		Payload:      []byte(`{}`),
		OccurredAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	return id
}

func TestProcessOnceDrainsPending(t *testing.T) {
	t.Parallel()

	outbox := memory.NewOutboxStore()
	enqueue(t, outbox, "newOpinion")
	enqueue(t, outbox, "editOpinion")
	publisher := &recordingPublisher{}

	worker := NewOutboxWorker(discardLogger(), outbox, publisher, time.Second, 10)
	if err := worker.processOnce(context.Background()); err != nil {
		t.Fatalf("processOnce: %v", err)
	}
	if len(publisher.published) != 2 {
		t.Fatalf("expected 2 published events, got %d", len(publisher.published))
	}

	remaining, err := outbox.FetchUnpublished(context.Background(), 10)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected drained outbox, %d records remain", len(remaining))
	}
}

func TestProcessOnceKeepsFailedRecords(t *testing.T) {
	t.Parallel()

	outbox := memory.NewOutboxStore()
	enqueue(t, outbox, "newOpinion")
	failedID := enqueue(t, outbox, "editOpinion")
	publisher := &recordingPublisher{failTypes: map[string]bool{"editOpinion": true}}

	worker := NewOutboxWorker(discardLogger(), outbox, publisher, time.Second, 10)
	if err := worker.processOnce(context.Background()); err != nil {
		t.Fatalf("processOnce: %v", err)
	}

	remaining, err := outbox.FetchUnpublished(context.Background(), 10)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(remaining) != 1 || remaining[0].OutboxID != failedID {
		t.Fatalf("expected only the failed record to remain, got %+v", remaining)
	}
	if remaining[0].RetryCount != 1 || remaining[0].LastError == nil {
		t.Fatalf("expected failure bookkeeping, got %+v", remaining[0])
	}
}

func TestProcessOnceRespectsBatchSize(t *testing.T) {
	t.Parallel()

	outbox := memory.NewOutboxStore()
	for i := 0; i < 5; i++ {
		enqueue(t, outbox, "editOpinion")
	}
	publisher := &recordingPublisher{}

	worker := NewOutboxWorker(discardLogger(), outbox, publisher, time.Second, 2)
	if err := worker.processOnce(context.Background()); err != nil {
		t.Fatalf("processOnce: %v", err)
	}
	if len(publisher.published) != 2 {
		t.Fatalf("expected batch of 2, got %d", len(publisher.published))
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	worker := NewOutboxWorker(discardLogger(), memory.NewOutboxStore(), &recordingPublisher{}, 10*time.Millisecond, 10)

	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("worker did not stop after cancel")
	}
}
