package main

import (
	"context"
	"log/slog"

	"skill-assessment/internal/cache"
	"skill-assessment/internal/config"
	"skill-assessment/internal/events"
)

// newAvailabilityStore returns Redis when an address is configured, else a volatile in-memory map
func newAvailabilityStore(ctx context.Context, cfg *config.RedisConfig) (cache.KVStore, func(), error) {
	if cfg.Addr == "" {
		slog.Info("Availability store: in-memory")
		return cache.NewMemoryStore(), func() {}, nil
	}

	client, err := cache.Connect(ctx, cfg.Addr, cfg.Password, cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("Availability store: redis", "addr", cfg.Addr)
	return cache.NewRedisStore(client, cfg.KeyPrefix, cfg.TTL), func() {
		if err := client.Close(); err != nil {
			slog.Warn("Failed to close Redis client", "error", err)
		}
	}, nil
}

// newPublisher returns an AMQP publisher when a broker URL is configured, else a no-op
func newPublisher(cfg *config.AMQPConfig) (events.Publisher, error) {
	if cfg.URL == "" {
		slog.Info("Event publishing disabled")
		return events.NopPublisher{}, nil
	}

	publisher, err := events.NewAMQPPublisher(cfg.URL, cfg.Exchange)
	if err != nil {
		return nil, err
	}
	slog.Info("Event publishing enabled", "exchange", cfg.Exchange)
	return publisher, nil
}
