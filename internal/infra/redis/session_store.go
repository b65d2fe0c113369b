package redis

import (
	"context"
	"sync"
	"time"

	"chapter-quiz-service/internal/app"
	"github.com/redis/go-redis/v9"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Controllers own live timers, so they stay in process; Redis only carries a
// liveness marker per connected client for other instances and dashboards.
type SessionStore struct {
	client      *redis.Client
	ttl         time.Duration
	mu          sync.RWMutex
	controllers map[string]*app.Controller
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:      client,
		ttl:         ttl,
		controllers: make(map[string]*app.Controller),
	}
}

func (s *SessionStore) Acquire(clientID string, create func() *app.Controller) *app.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctrl, ok := s.controllers[clientID]
	if !ok {
		ctrl = create()
		s.controllers[clientID] = ctrl
	}
	connections := ctrl.Attach()
	// best-effort liveness marker, refreshed on every connection
	_ = s.client.Set(context.Background(), s.key(clientID), connections, s.ttl).Err()
	return ctrl
}

func (s *SessionStore) Get(clientID string) (*app.Controller, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ctrl, ok := s.controllers[clientID]
	return ctrl, ok
}

func (s *SessionStore) Release(clientID string) (*app.Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctrl, ok := s.controllers[clientID]
	if !ok {
		return nil, false
	}
	if left := ctrl.Detach(); left > 0 {
		_ = s.client.Set(context.Background(), s.key(clientID), left, s.ttl).Err()
		return ctrl, false
	}
	delete(s.controllers, clientID)
	_ = s.client.Del(context.Background(), s.key(clientID)).Err()
	return ctrl, true
}

func (s *SessionStore) key(clientID string) string {
	return "quiz:session:" + clientID
}
