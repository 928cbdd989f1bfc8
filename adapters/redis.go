package adapters

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/soffa-projects/tutor-shell/h"
)

// NewRedisClient connects to redis://[user:password@]host:port[/db] and pings it.
func NewRedisClient(cfg h.Url) (*redis.Client, error) {
	db := 0
	if cfg.HasQueryParam("db") {
		value, err := strconv.Atoi(fmt.Sprint(cfg.Query("db")))
		if err != nil {
			return nil, fmt.Errorf("invalid redis db: %w", err)
		}
		db = value
	}
	if path := strings.TrimPrefix(cfg.Path, "/"); path != "" {
		value, err := strconv.Atoi(path)
		if err != nil {
			return nil, fmt.Errorf("invalid redis db %q: %w", path, err)
		}
		db = value
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Host,
		Username: cfg.User,
		Password: cfg.Password,
		DB:       db,
	})
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}
