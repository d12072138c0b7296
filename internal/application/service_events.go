package application

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/opinionboard/opinion-service/internal/domain"
	"github.com/opinionboard/opinion-service/internal/ports"
)

const (
	EventNewOpinion  = "newOpinion"
	EventEditOpinion = "editOpinion"
)

type notificationEnvelope struct {
	Event     string   `json:"event"`
	Data      PostView `json:"data"`
	Timestamp string   `json:"timestamp"`
}

// afterMutation runs the post-commit side effects of an accepted mutation:
// cache invalidation, a durable outbox record, and the live fan-out. None of
// them can fail the request that caused the mutation.
func (s *Service) afterMutation(ctx context.Context, event string, post domain.Post) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, cacheKeyPost(post.PostID))
	}
	if err := s.enqueueEngagementEvent(ctx, event, post); err != nil {
		s.logger.WarnContext(ctx, "outbox enqueue failed",
			"module", "application.engine",
			"operation", "enqueue_engagement_event",
			"outcome", "failure",
			"event", event,
			"post_id", post.PostID,
			"error", err,
		)
	}
	s.notifyAsync(ctx, event, post)
}

// notifyAsync publishes the live update on its own goroutine so publisher
// latency or failure cannot delay or fail the response path. Failures are
// logged and discarded, never retried.
func (s *Service) notifyAsync(ctx context.Context, event string, post domain.Post) {
	if s.notifier == nil {
		return
	}
	envelope := notificationEnvelope{
		Event:     event,
		Data:      toPostView(post),
		Timestamp: s.nowFn().Format(time.RFC3339Nano),
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		s.logger.WarnContext(ctx, "notification marshal failed",
			"module", "application.engine",
			"operation", "notify",
			"outcome", "failure",
			"event", event,
			"post_id", post.PostID,
			"error", err,
		)
		return
	}
	detached := context.WithoutCancel(ctx)
	go func() {
		if err := s.notifier.Publish(detached, event, payload); err != nil {
			s.logger.WarnContext(detached, "notification publish failed",
				"module", "application.engine",
				"operation", "notify",
				"outcome", "failure",
				"event", event,
				"post_id", post.PostID,
				"error", err,
			)
		}
	}()
}

func (s *Service) enqueueEngagementEvent(ctx context.Context, event string, post domain.Post) error {
	if s.outbox == nil {
		return nil
	}
	occurredAt := s.nowFn()
	payload, _ := json.Marshal(map[string]any{
		"event_id":    uuid.NewString(),
		"event_type":  event,
		"occurred_at": occurredAt.Format(time.RFC3339),
		"source":      s.cfg.ServiceName,
		"data":        toPostView(post),
	})
	return s.outbox.Enqueue(ctx, ports.OutboxEvent{
		EventID:      uuid.New(),
		EventType:    event,
		PartitionKey: post.PostID,
		Payload:      payload,
		OccurredAt:   occurredAt,
	})
}
