package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/opinionboard/opinion-service/internal/domain"
)

// PostRepository is the durable owner of Post documents. SaveWithVersion is a
// conditional write: it commits only when the stored document still carries
// expectedVersion, returning domain.ErrVersionMismatch otherwise so the caller
// can re-read and retry.
type PostRepository interface {
	Create(ctx context.Context, post domain.Post) error
	GetByID(ctx context.Context, postID string) (domain.Post, error)
	SaveWithVersion(ctx context.Context, post domain.Post, expectedVersion int64) (domain.Post, error)
}

type OutboxEvent struct {
	EventID      uuid.UUID
	EventType    string
	PartitionKey string
	Payload      []byte
	OccurredAt   time.Time
}

type OutboxRecord struct {
	OutboxID     uuid.UUID
	EventType    string
	PartitionKey string
	Payload      []byte
	RetryCount   int
	PublishedAt  *time.Time
	LastError    *string
	LastErrorAt  *time.Time
	FirstSeenAt  time.Time
}

type OutboxRepository interface {
	Enqueue(ctx context.Context, event OutboxEvent) error
	FetchUnpublished(ctx context.Context, limit int) ([]OutboxRecord, error)
	MarkPublished(ctx context.Context, outboxID uuid.UUID, at time.Time) error
	MarkFailed(ctx context.Context, outboxID uuid.UUID, errMsg string, at time.Time) error
}
