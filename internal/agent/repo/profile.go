package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Chative-core-poc-v1/assistant/internal/agent/model"
	errx "github.com/Chative-core-poc-v1/assistant/internal/core/error"
	logx "github.com/Chative-core-poc-v1/assistant/pkg/logger"
)

// RedisProfileStore reads user profiles stored as JSON under profile:<userID>.
type RedisProfileStore struct {
	rdb redis.Cmdable
}

func NewRedisProfileStore(rdb redis.Cmdable) *RedisProfileStore {
	return &RedisProfileStore{rdb: rdb}
}

func (r *RedisProfileStore) profileKey(userID string) string {
	return fmt.Sprintf("profile:%s", userID)
}

// GetProfile returns nil without error when the user has no stored profile.
func (r *RedisProfileStore) GetProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	if userID == "" {
		return nil, nil
	}
	key := r.profileKey(userID)

	raw, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load profile from redis")
		return nil, errx.WrapRedis(err)
	}

	var p model.UserProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to unmarshal profile")
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}
	p.UserID = userID
	return &p, nil
}

// SaveProfile writes the profile without expiry.
func (r *RedisProfileStore) SaveProfile(ctx context.Context, p *model.UserProfile) error {
	if p == nil || p.UserID == "" {
		return fmt.Errorf("profile requires a user id")
	}
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	if err := r.rdb.Set(ctx, r.profileKey(p.UserID), b, 0).Err(); err != nil {
		logx.Error().Err(err).Str("userID", p.UserID).Msg("failed to save profile")
		return errx.WrapRedis(err)
	}
	return nil
}
