package memory

import (
	"sync"

	"chapter-quiz-service/internal/app"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
type SessionStore struct {
	mu          sync.RWMutex
	controllers map[string]*app.Controller
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		controllers: make(map[string]*app.Controller),
	}
}

// Acquire returns the client's controller, creating it on first use, and
// attaches one connection to it.
func (s *SessionStore) Acquire(clientID string, create func() *app.Controller) *app.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctrl, ok := s.controllers[clientID]
	if !ok {
		ctrl = create()
		s.controllers[clientID] = ctrl
	}
	ctrl.Attach()
	return ctrl
}

func (s *SessionStore) Get(clientID string) (*app.Controller, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ctrl, ok := s.controllers[clientID]
	return ctrl, ok
}

// Release detaches one connection; the controller is removed with the last one.
func (s *SessionStore) Release(clientID string) (*app.Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctrl, ok := s.controllers[clientID]
	if !ok {
		return nil, false
	}
	if ctrl.Detach() > 0 {
		return ctrl, false
	}
	delete(s.controllers, clientID)
	return ctrl, true
}
