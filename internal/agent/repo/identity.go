package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	errx "github.com/Chative-core-poc-v1/assistant/internal/core/error"
)

// RedisIdentityResolver maps bearer tokens to user ids through session:<token>
// keys written by the site's login flow.
type RedisIdentityResolver struct {
	rdb redis.Cmdable
}

func NewRedisIdentityResolver(rdb redis.Cmdable) *RedisIdentityResolver {
	return &RedisIdentityResolver{rdb: rdb}
}

func (r *RedisIdentityResolver) sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}

// ResolveUser returns the user id for token, or "" for an unknown or
// expired session.
func (r *RedisIdentityResolver) ResolveUser(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", nil
	}
	userID, err := r.rdb.Get(ctx, r.sessionKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", errx.WrapRedis(err)
	}
	return strings.TrimSpace(userID), nil
}

// CreateSession stores a session for userID.
func (r *RedisIdentityResolver) CreateSession(ctx context.Context, token, userID string, ttl time.Duration) error {
	if err := r.rdb.Set(ctx, r.sessionKey(token), userID, ttl).Err(); err != nil {
		return errx.WrapRedis(err)
	}
	return nil
}
