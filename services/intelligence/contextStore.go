package intelligence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cropconnect/models"
	"cropconnect/utils"

	"github.com/go-redis/redis/v8"
)

// RedisContextStore keeps each conversation as a capped Redis list whose TTL slides on every append.
type RedisContextStore struct {
	client   *redis.Client
	ttl      time.Duration
	maxTurns int64
}

func NewRedisContextStore(client *redis.Client, ttl time.Duration, maxTurns int) *RedisContextStore {
	return &RedisContextStore{client: client, ttl: ttl, maxTurns: int64(maxTurns)}
}

func (s *RedisContextStore) History(ctx context.Context, userID string) ([]models.AITurn, error) {
	raw, err := s.client.LRange(ctx, utils.AIContextPrefix+userID, 0, -1).Result()
	if err != nil && err != redis.Nil {
		return nil, err
	}
	turns := make([]models.AITurn, 0, len(raw))
	for _, item := range raw {
		var t models.AITurn
		if err := json.Unmarshal([]byte(item), &t); err != nil {
			return nil, fmt.Errorf("corrupt conversation entry: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, nil
}

func (s *RedisContextStore) Append(ctx context.Context, userID string, turns ...models.AITurn) error {
	if len(turns) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(turns))
	for _, t := range turns {
		b, err := json.Marshal(t)
		if err != nil {
			return err
		}
		values = append(values, b)
	}

	key := utils.AIContextPrefix + userID
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, values...)
		pipe.LTrim(ctx, key, -s.maxTurns, -1)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	return err
}

func (s *RedisContextStore) Clear(ctx context.Context, userID string) error {
	return s.client.Del(ctx, utils.AIContextPrefix+userID).Err()
}
