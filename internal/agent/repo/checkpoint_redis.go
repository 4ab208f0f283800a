package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noteapp-chat/server/internal/agent/model"
	errx "github.com/noteapp-chat/server/internal/core/error"
	logx "github.com/noteapp-chat/server/pkg/logger"
)

var errMissingThread = errors.New("checkpoint has no thread id")

// RedisCheckpointer stores one JSON document per thread.
type RedisCheckpointer struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisCheckpointer(rdb redis.Cmdable, ttl time.Duration) *RedisCheckpointer {
	return &RedisCheckpointer{rdb: rdb, ttl: ttl}
}

func (r *RedisCheckpointer) key(threadID string) string {
	return fmt.Sprintf("noteapp:checkpoint:%s", threadID)
}

func (r *RedisCheckpointer) Load(ctx context.Context, threadID string) (*model.Checkpoint, error) {
	key := r.key(threadID)
	raw, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		logx.Ctx(ctx).Error().Err(err).Str("key", key).Msg("failed to load checkpoint")
		return nil, errx.WrapRedis(err)
	}

	var cp model.Checkpoint
	if err := json.Unmarshal(raw, &cp); err != nil {
		logx.Ctx(ctx).Error().Err(err).Str("key", key).Msg("failed to decode checkpoint")
		return nil, fmt.Errorf("decode checkpoint %s: %w", threadID, err)
	}
	return &cp, nil
}

func (r *RedisCheckpointer) Save(ctx context.Context, cp *model.Checkpoint) error {
	if cp == nil || cp.ThreadID == "" {
		return errMissingThread
	}
	if cp.UpdatedAt.IsZero() {
		cp.UpdatedAt = time.Now().UTC()
	}
	b, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("encode checkpoint %s: %w", cp.ThreadID, err)
	}

	key := r.key(cp.ThreadID)
	// ttl 0 means no expiry for SET
	if err := r.rdb.Set(ctx, key, b, r.ttl).Err(); err != nil {
		logx.Ctx(ctx).Error().Err(err).Str("key", key).Msg("failed to save checkpoint")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisCheckpointer) Clear(ctx context.Context, threadID string) error {
	key := r.key(threadID)
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		logx.Ctx(ctx).Error().Err(err).Str("key", key).Msg("failed to clear checkpoint")
		return errx.WrapRedis(err)
	}
	return nil
}
