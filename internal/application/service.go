package application

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/opinionboard/opinion-service/internal/ports"
)

// Service is the engagement engine. It holds no mutable state of its own;
// every read-modify-write on a post goes through the repository's conditional
// save and is retried on version conflicts up to VoteRetryAttempts.
type Service struct {
	cfg      Config
	posts    ports.PostRepository
	outbox   ports.OutboxRepository
	notifier ports.Notifier
	cache    ports.Cache
	logger   *slog.Logger
	nowFn    func() time.Time
	idFn     func() string
}

type Dependencies struct {
	Config   Config
	Posts    ports.PostRepository
	Outbox   ports.OutboxRepository
	Notifier ports.Notifier
	Cache    ports.Cache
	Logger   *slog.Logger
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.ServiceName == "" {
		cfg.ServiceName = "opinion-service"
	}
	if cfg.VoteRetryAttempts <= 0 {
		cfg.VoteRetryAttempts = 5
	}
	if cfg.PostCacheTTL <= 0 {
		cfg.PostCacheTTL = 30 * time.Second
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		cfg:      cfg,
		posts:    deps.Posts,
		outbox:   deps.Outbox,
		notifier: deps.Notifier,
		cache:    deps.Cache,
		logger:   logger,
		nowFn:    func() time.Time { return time.Now().UTC() },
		idFn:     uuid.NewString,
	}
}
