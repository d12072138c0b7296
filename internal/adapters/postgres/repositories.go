package postgres

import (
	"github.com/opinionboard/opinion-service/internal/ports"
	"gorm.io/gorm"
)

type Repositories struct {
	Posts  ports.PostRepository
	Outbox ports.OutboxRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Posts:  &opinionRepository{db: db},
		Outbox: &outboxRepository{db: db},
	}
}
