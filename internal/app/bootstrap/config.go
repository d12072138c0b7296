package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ServiceID string

	HTTPPort int
	GRPCPort int

	DatabaseURL  string
	RedisURL     string
	KafkaBrokers []string

	NotifyChannel        string
	KafkaTopicEngagement string
	AllowedOrigin        string

	MaxDBConns         int32
	VoteRetryAttempts  int
	PostCacheTTL       time.Duration
	OutboxPollInterval time.Duration
	OutboxBatchSize    int
}

type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
		GRPCPort int    `yaml:"grpc_port"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL          string   `yaml:"postgres_url"`
		RedisURL             string   `yaml:"redis_url"`
		KafkaBrokers         []string `yaml:"kafka_brokers"`
		KafkaTopicEngagement string   `yaml:"kafka_topic_engagement"`
	} `yaml:"dependencies"`
	Engagement struct {
		NotifyChannel     string `yaml:"notify_channel"`
		AllowedOrigin     string `yaml:"allowed_origin"`
		VoteRetryAttempts int    `yaml:"vote_retry_attempts"`
	} `yaml:"engagement"`
}

// LoadConfig layers yaml file values over built-in defaults, then environment
// variables over both. A missing config file is not an error; everything has
// a workable local default except nothing at all.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:            "opinion-service",
		HTTPPort:             8080,
		GRPCPort:             9090,
		MaxDBConns:           20,
		NotifyChannel:        "opinions",
		KafkaTopicEngagement: "opinions.engagement",
		AllowedOrigin:        "*",
		VoteRetryAttempts:    5,
		PostCacheTTL:         30 * time.Second,
		OutboxPollInterval:   2 * time.Second,
		OutboxBatchSize:      100,
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Service.GRPCPort > 0 {
			cfg.GRPCPort = f.Service.GRPCPort
		}
		if f.Dependencies.PostgresURL != "" {
			cfg.DatabaseURL = f.Dependencies.PostgresURL
		}
		if f.Dependencies.RedisURL != "" {
			cfg.RedisURL = f.Dependencies.RedisURL
		}
		if len(f.Dependencies.KafkaBrokers) > 0 {
			cfg.KafkaBrokers = trimNonEmpty(f.Dependencies.KafkaBrokers)
		}
		if f.Dependencies.KafkaTopicEngagement != "" {
			cfg.KafkaTopicEngagement = f.Dependencies.KafkaTopicEngagement
		}
		if f.Engagement.NotifyChannel != "" {
			cfg.NotifyChannel = f.Engagement.NotifyChannel
		}
		if f.Engagement.AllowedOrigin != "" {
			cfg.AllowedOrigin = f.Engagement.AllowedOrigin
		}
		if f.Engagement.VoteRetryAttempts > 0 {
			cfg.VoteRetryAttempts = f.Engagement.VoteRetryAttempts
		}
	}

	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.KafkaBrokers = envCSV("KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.KafkaTopicEngagement = envOrDefault("KAFKA_TOPIC_ENGAGEMENT", cfg.KafkaTopicEngagement)
	cfg.NotifyChannel = envOrDefault("NOTIFY_CHANNEL", cfg.NotifyChannel)
	cfg.AllowedOrigin = envOrDefault("ALLOWED_ORIGIN", cfg.AllowedOrigin)
	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = envInt("GRPC_PORT", cfg.GRPCPort)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))
	cfg.VoteRetryAttempts = envInt("VOTE_RETRY_ATTEMPTS", cfg.VoteRetryAttempts)
	cfg.PostCacheTTL = time.Duration(envInt("POST_CACHE_SECONDS", int(cfg.PostCacheTTL.Seconds()))) * time.Second
	cfg.OutboxPollInterval = time.Duration(envInt("OUTBOX_POLL_SECONDS", int(cfg.OutboxPollInterval.Seconds()))) * time.Second
	cfg.OutboxBatchSize = envInt("OUTBOX_BATCH_SIZE", cfg.OutboxBatchSize)

	return cfg, nil
}

func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envCSV(name string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	return trimNonEmpty(strings.Split(raw, ","))
}

func trimNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
