package app

import (
	"context"
	"errors"
	"time"

	"chapter-quiz-service/internal/domain"
	"github.com/rs/zerolog"
)

// SessionRepository abstracts where per-client controllers live (in-memory, Redis, etc).
// Acquire and Release count connections; the controller is forgotten when
// its last connection is released.
type SessionRepository interface {
	Acquire(clientID string, create func() *Controller) *Controller
	Get(clientID string) (*Controller, bool)
	Release(clientID string) (ctrl *Controller, last bool)
}

// BankRepository fetches a subject's question bank (from cache/backing store).
type BankRepository interface {
	GetBank(ctx context.Context, subject string) (domain.QuestionBank, error)
}

// ResultStore archives finalized results so reports can be fetched later.
type ResultStore interface {
	SaveResult(ctx context.Context, result domain.StoredResult) error
	GetResult(ctx context.Context, id string) (domain.StoredResult, error)
}

// QuizService contains the quiz use cases shared by every transport.
type QuizService struct {
	sessions SessionRepository
	banks    BankRepository
	results  ResultStore
	themes   *ThemeCycler
	opts     ControllerOptions
	log      zerolog.Logger

	saveTimeout time.Duration
}

func NewQuizService(sessions SessionRepository, banks BankRepository, results ResultStore, themes *ThemeCycler, opts ControllerOptions) *QuizService {
	if themes == nil {
		themes = NewThemeCycler(nil)
	}
	return &QuizService{
		sessions:    sessions,
		banks:       banks,
		results:     results,
		themes:      themes,
		opts:        opts,
		log:         opts.Logger,
		saveTimeout: 5 * time.Second,
	}
}

// Join registers a connection for a client and returns its controller.
// Connections sharing a client id share the controller.
func (s *QuizService) Join(_ context.Context, clientID string) *Controller {
	return s.sessions.Acquire(clientID, func() *Controller {
		opts := s.opts
		opts.Finalizers = append(append([]Finalizer(nil), s.opts.Finalizers...), s.archive)
		return NewController(clientID, opts)
	})
}

// LoadSubject fetches the subject's bank and makes it the client's active bank.
// Any running session is discarded. Load failures leave the client untouched.
func (s *QuizService) LoadSubject(ctx context.Context, clientID, subject string) ([]string, error) {
	ctrl, ok := s.sessions.Get(clientID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	bank, err := s.banks.GetBank(ctx, subject)
	if err != nil {
		s.log.Warn().Err(err).Str("client_id", clientID).Str("subject", subject).Msg("bank load failed")
		return nil, err
	}
	ctrl.SetBank(bank)
	return bank.ChapterNames(), nil
}

// LoadChapter starts a timed session on one chapter of the active bank.
func (s *QuizService) LoadChapter(_ context.Context, clientID, chapter string) (domain.ViewModel, error) {
	ctrl, ok := s.sessions.Get(clientID)
	if !ok {
		return domain.ViewModel{}, domain.ErrSessionNotFound
	}
	return ctrl.LoadChapter(chapter)
}

// Select answers the current question.
func (s *QuizService) Select(_ context.Context, clientID, option string) (domain.ViewModel, error) {
	ctrl, ok := s.sessions.Get(clientID)
	if !ok {
		return domain.ViewModel{}, domain.ErrSessionNotFound
	}
	return ctrl.Select(option)
}

// Next moves to the following question.
func (s *QuizService) Next(_ context.Context, clientID string) (domain.ViewModel, error) {
	ctrl, ok := s.sessions.Get(clientID)
	if !ok {
		return domain.ViewModel{}, domain.ErrSessionNotFound
	}
	return ctrl.Next()
}

// Previous moves to the preceding question.
func (s *QuizService) Previous(_ context.Context, clientID string) (domain.ViewModel, error) {
	ctrl, ok := s.sessions.Get(clientID)
	if !ok {
		return domain.ViewModel{}, domain.ErrSessionNotFound
	}
	return ctrl.Previous()
}

// Submit finalizes the client's session.
func (s *QuizService) Submit(_ context.Context, clientID string) (domain.StoredResult, error) {
	ctrl, ok := s.sessions.Get(clientID)
	if !ok {
		return domain.StoredResult{}, domain.ErrSessionNotFound
	}
	return ctrl.Submit()
}

// Subscribe returns a channel of session events for a client.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, clientID string) (<-chan Event, func(), error) {
	ctrl, ok := s.sessions.Get(clientID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := ctrl.Subscribe()
	return ch, cancel, nil
}

// Leave releases one connection. The last one out stops the countdown and
// forgets the client.
func (s *QuizService) Leave(_ context.Context, clientID string) {
	ctrl, last := s.sessions.Release(clientID)
	if !last {
		return
	}
	ctrl.Close()
}

// Result loads an archived result by id.
func (s *QuizService) Result(ctx context.Context, id string) (domain.StoredResult, error) {
	return s.results.GetResult(ctx, id)
}

// Theme returns the current theme.
func (s *QuizService) Theme() string {
	return s.themes.Current()
}

// NextTheme cycles the process-wide theme.
func (s *QuizService) NextTheme() string {
	return s.themes.Next()
}

func (s *QuizService) archive(result domain.StoredResult) {
	if s.results == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.saveTimeout)
	defer cancel()
	if err := s.results.SaveResult(ctx, result); err != nil && !errors.Is(err, context.Canceled) {
		s.log.Error().Err(err).Str("result_id", result.ID).Msg("archive result failed")
	}
}
