package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"chapter-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// ResultStore keeps finalized results as JSON: SET quiz:result:{id} {json} EX ttl
type ResultStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewResultStore(client *redis.Client, ttl time.Duration) *ResultStore {
	return &ResultStore{client: client, ttl: ttl}
}

func (s *ResultStore) SaveResult(ctx context.Context, result domain.StoredResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return s.client.Set(ctx, s.key(result.ID), data, s.ttl).Err()
}

func (s *ResultStore) GetResult(ctx context.Context, id string) (domain.StoredResult, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.StoredResult{}, domain.ErrResultNotFound
	}
	if err != nil {
		return domain.StoredResult{}, fmt.Errorf("get result: %w", err)
	}
	var result domain.StoredResult
	if err := json.Unmarshal(data, &result); err != nil {
		return domain.StoredResult{}, fmt.Errorf("unmarshal result: %w", err)
	}
	return result, nil
}

func (s *ResultStore) key(id string) string {
	return "quiz:result:" + id
}
