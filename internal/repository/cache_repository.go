package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// HotQuestionCache кэш списка горячих вопросов (cache-aside на пути чтения)
type HotQuestionCache interface {
	Get(ctx context.Context) ([]string, error)
	Set(ctx context.Context, questions []string, ttl time.Duration) error
	Delete(ctx context.Context) error
}

const hotQuestionsCacheKey = "hot_questions:latest"

type hotQuestionCache struct {
	redis *RedisDB
}

func NewHotQuestionCache(redis *RedisDB) HotQuestionCache {
	return &hotQuestionCache{redis: redis}
}

func (c *hotQuestionCache) Get(ctx context.Context) ([]string, error) {
	data, err := c.redis.Client.Get(ctx, hotQuestionsCacheKey).Bytes()
	if err != nil {
		return nil, err
	}

	var questions []string
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal hot questions: %w", err)
	}

	return questions, nil
}

func (c *hotQuestionCache) Set(ctx context.Context, questions []string, ttl time.Duration) error {
	data, err := json.Marshal(questions)
	if err != nil {
		return fmt.Errorf("failed to marshal hot questions: %w", err)
	}

	return c.redis.Client.Set(ctx, hotQuestionsCacheKey, data, ttl).Err()
}

func (c *hotQuestionCache) Delete(ctx context.Context) error {
	return c.redis.Client.Del(ctx, hotQuestionsCacheKey).Err()
}

// noopHotQuestionCache заглушка для режима без Redis: всегда промах
type noopHotQuestionCache struct{}

func NewNoopHotQuestionCache() HotQuestionCache {
	return noopHotQuestionCache{}
}

var errCacheMiss = fmt.Errorf("cache miss")

func (noopHotQuestionCache) Get(ctx context.Context) ([]string, error) { return nil, errCacheMiss }

func (noopHotQuestionCache) Set(ctx context.Context, questions []string, ttl time.Duration) error {
	return nil
}

func (noopHotQuestionCache) Delete(ctx context.Context) error { return nil }
