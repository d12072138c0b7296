package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/opinionboard/opinion-service/internal/domain"
	"github.com/opinionboard/opinion-service/internal/ports"
)

// PostStore is an in-memory ports.PostRepository with the same conditional
// save contract as the postgres adapter. It backs local development when no
// database is configured, and the engine's tests.
type PostStore struct {
	mu    sync.Mutex
	posts map[string]domain.Post
}

func NewPostStore() *PostStore {
	return &PostStore{posts: make(map[string]domain.Post)}
}

func (s *PostStore) Create(_ context.Context, post domain.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.posts[post.PostID]; exists {
		return domain.ErrConflict
	}
	s.posts[post.PostID] = clonePost(post)
	return nil
}

func (s *PostStore) GetByID(_ context.Context, postID string) (domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[postID]
	if !ok {
		return domain.Post{}, domain.ErrNotFound
	}
	return clonePost(post), nil
}

func (s *PostStore) SaveWithVersion(_ context.Context, post domain.Post, expectedVersion int64) (domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.posts[post.PostID]
	if !ok {
		return domain.Post{}, domain.ErrNotFound
	}
	if stored.Version != expectedVersion {
		return domain.Post{}, domain.ErrVersionMismatch
	}
	post.Version = expectedVersion + 1
	s.posts[post.PostID] = clonePost(post)
	return clonePost(post), nil
}

func clonePost(p domain.Post) domain.Post {
	out := p
	out.LikedBy = append([]string(nil), p.LikedBy...)
	out.DislikedBy = append([]string(nil), p.DislikedBy...)
	out.Comments = append([]domain.Comment(nil), p.Comments...)
	return out
}

// OutboxStore keeps outbox records in memory. With no durable broker behind
// it the records only feed the logging publisher, which is what local
// development runs with anyway.
type OutboxStore struct {
	mu      sync.Mutex
	records []ports.OutboxRecord
}

func NewOutboxStore() *OutboxStore {
	return &OutboxStore{}
}

func (s *OutboxStore) Enqueue(_ context.Context, event ports.OutboxEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, ports.OutboxRecord{
		OutboxID:     event.EventID,
		EventType:    event.EventType,
		PartitionKey: event.PartitionKey,
		Payload:      append([]byte(nil), event.Payload...),
		FirstSeenAt:  event.OccurredAt,
	})
	return nil
}

func (s *OutboxStore) FetchUnpublished(_ context.Context, limit int) ([]ports.OutboxRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ports.OutboxRecord, 0, limit)
	for _, rec := range s.records {
		if rec.PublishedAt != nil {
			continue
		}
		out = append(out, rec)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *OutboxStore) MarkPublished(_ context.Context, outboxID uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].OutboxID == outboxID {
			published := at
			s.records[i].PublishedAt = &published
			return nil
		}
	}
	return nil
}

func (s *OutboxStore) MarkFailed(_ context.Context, outboxID uuid.UUID, errMsg string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].OutboxID == outboxID {
			s.records[i].RetryCount++
			msg := errMsg
			failedAt := at
			s.records[i].LastError = &msg
			s.records[i].LastErrorAt = &failedAt
			return nil
		}
	}
	return nil
}
