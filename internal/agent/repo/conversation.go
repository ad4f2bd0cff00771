package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Chative-core-poc-v1/assistant/internal/agent/model"
	errx "github.com/Chative-core-poc-v1/assistant/internal/core/error"
	logx "github.com/Chative-core-poc-v1/assistant/pkg/logger"
	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"
)

// RedisConversationRepository stores each conversation as a Redis list of
// JSON encoded messages. The TTL is refreshed on every append.
type RedisConversationRepository struct {
	rdb redis.Cmdable
	ttl time.Duration
	// maxMessages caps the stored list; zero keeps everything.
	maxMessages int
}

func NewRedisConversationRepository(rdb redis.Cmdable, config model.ConversationConfig) *RedisConversationRepository {
	return &RedisConversationRepository{rdb: rdb, ttl: config.TTL, maxMessages: config.MaxStoredTurns}
}

func (r *RedisConversationRepository) conversationKey(conversationID string) string {
	return fmt.Sprintf("conversation:%s:messages", conversationID)
}

func (r *RedisConversationRepository) AddMessage(ctx context.Context, conversationID string, message *schema.Message) error {
	b, err := json.Marshal(message)
	if err != nil {
		logx.Error().Err(err).Str("conversationID", conversationID).Msg("failed to marshal message")
		return fmt.Errorf("marshal message: %w", err)
	}
	key := r.conversationKey(conversationID)

	// append message
	n, err := r.rdb.RPush(ctx, key, b).Result()
	if err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to push message to redis")
		return errx.WrapRedis(err)
	}
	if r.maxMessages > 0 && n > int64(r.maxMessages) {
		if err := r.rdb.LTrim(ctx, key, int64(-r.maxMessages), -1).Err(); err != nil {
			logx.Error().Err(err).Str("key", key).Msg("failed to trim conversation")
			return errx.WrapRedis(err)
		}
	}
	// extend TTL on touch
	if r.ttl > 0 {
		if ok, err := r.rdb.Expire(ctx, key, r.ttl).Result(); err != nil {
			logx.Error().Err(err).Str("key", key).Msg("failed to set expire")
			return errx.WrapRedis(err)
		} else if !ok {
			logx.Warn().Str("key", key).Dur("ttl", r.ttl).Msg("failed to set TTL on conversation key")
		}
	}
	return nil
}

func (r *RedisConversationRepository) LoadHistory(ctx context.Context, conversationID string) (*model.ConversationHistory, error) {
	key := r.conversationKey(conversationID)

	rows, err := r.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return &model.ConversationHistory{ConversationID: conversationID, Messages: []*schema.Message{}}, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load conversation history from redis")
		return nil, errx.WrapRedis(err)
	}

	msgs := make([]*schema.Message, 0, len(rows))
	for i, s := range rows {
		var m schema.Message
		if err := json.Unmarshal([]byte(s), &m); err != nil {
			// a corrupt entry is dropped, the rest of the history is still usable
			logx.Warn().Err(err).Str("conversationID", conversationID).Int("index", i).Msg("skipping malformed stored message")
			continue
		}
		msgs = append(msgs, &m)
	}
	return &model.ConversationHistory{ConversationID: conversationID, Messages: msgs}, nil
}

var _ model.ConversationRepository = (*RedisConversationRepository)(nil)
