package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"ncpa-assist/internal/logger"
	"ncpa-assist/utils"
)

// AnswerCache memoizes answers per (question, language) in Redis. The
// cache fails open: Redis being down degrades to answering fresh every
// time, never to an error for the user.
type AnswerCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewAnswerCache(rdb *redis.Client, ttl time.Duration) *AnswerCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &AnswerCache{rdb: rdb, ttl: ttl}
}

func (c *AnswerCache) Get(ctx context.Context, question, language string) (*Answer, bool) {
	data, err := c.rdb.Get(ctx, utils.CacheKey(question, language)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("answer cache read failed", "error", err)
		}
		return nil, false
	}
	var answer Answer
	if err := json.Unmarshal(data, &answer); err != nil {
		logger.Warn("answer cache entry corrupt", "error", err)
		return nil, false
	}
	return &answer, true
}

func (c *AnswerCache) Set(ctx context.Context, question, language string, answer *Answer) {
	data, err := json.Marshal(answer)
	if err != nil {
		logger.Warn("answer cache marshal failed", "error", err)
		return
	}
	if err := c.rdb.Set(ctx, utils.CacheKey(question, language), data, c.ttl).Err(); err != nil {
		logger.Warn("answer cache write failed", "error", err)
	}
}
