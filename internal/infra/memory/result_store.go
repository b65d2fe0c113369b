package memory

import (
	"context"
	"sync"

	"chapter-quiz-service/internal/domain"
)

// ResultStore keeps finalized results in process memory.
type ResultStore struct {
	mu      sync.RWMutex
	results map[string]domain.StoredResult
}

func NewResultStore() *ResultStore {
	return &ResultStore{results: make(map[string]domain.StoredResult)}
}

func (s *ResultStore) SaveResult(_ context.Context, result domain.StoredResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[result.ID] = result
	return nil
}

func (s *ResultStore) GetResult(_ context.Context, id string) (domain.StoredResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.results[id]
	if !ok {
		return domain.StoredResult{}, domain.ErrResultNotFound
	}
	return result, nil
}
