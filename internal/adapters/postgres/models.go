package postgres

import (
	"time"

	"github.com/google/uuid"
)

// opinionModel stores a Post as a single versioned document row. The vote
// sets and the comment list live in jsonb columns, mirroring the document
// shape the engine works with.
type opinionModel struct {
	PostID     string    `gorm:"column:post_id;primaryKey"`
	Message    string    `gorm:"column:message"`
	Username   string    `gorm:"column:username"`
	SessionID  string    `gorm:"column:session_id"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	Likes      int       `gorm:"column:likes"`
	Dislikes   int       `gorm:"column:dislikes"`
	LikedBy    string    `gorm:"column:liked_by;type:jsonb"`
	DislikedBy string    `gorm:"column:disliked_by;type:jsonb"`
	Comments   string    `gorm:"column:comments;type:jsonb"`
	Version    int64     `gorm:"column:version"`
}

func (opinionModel) TableName() string { return "opinions" }

type opinionOutboxModel struct {
	OutboxID     uuid.UUID  `gorm:"column:outbox_id;type:uuid;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      string     `gorm:"column:payload;type:jsonb"`
	RetryCount   int        `gorm:"column:retry_count"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
	LastError    *string    `gorm:"column:last_error"`
	LastErrorAt  *time.Time `gorm:"column:last_error_at"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	FirstSeenAt  time.Time  `gorm:"column:first_seen_at"`
}

func (opinionOutboxModel) TableName() string { return "opinion_outbox" }
