package memory

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"chapter-quiz-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// BankLoader fetches a subject's question bank from a backing source.
type BankLoader interface {
	LoadBank(ctx context.Context, subject string) (domain.QuestionBank, error)
}

// BankRepository keeps loaded banks in process so picking a subject again
// does not hit the source. Concurrent picks of an uncached subject share one
// load. Failed loads are never cached, so a retry reaches the source again.
type BankRepository struct {
	loader BankLoader
	ttl    time.Duration
	clock  func() time.Time
	loads  singleflight.Group

	mu      sync.RWMutex
	entries map[string]bankEntry
}

type bankEntry struct {
	bank    domain.QuestionBank
	expires time.Time
}

func (e bankEntry) fresh(now time.Time) bool {
	return now.Before(e.expires)
}

func NewBankRepository(loader BankLoader, ttl time.Duration) *BankRepository {
	return &BankRepository{
		loader:  loader,
		ttl:     ttl,
		clock:   time.Now,
		entries: make(map[string]bankEntry),
	}
}

func (r *BankRepository) GetBank(ctx context.Context, subject string) (domain.QuestionBank, error) {
	if bank, ok := r.cached(subject); ok {
		return bank, nil
	}

	v, err, _ := r.loads.Do(subject, func() (any, error) {
		if bank, ok := r.cached(subject); ok {
			return bank, nil
		}
		// the load is shared, so one caller going away must not fail the rest
		bank, err := r.loader.LoadBank(context.WithoutCancel(ctx), subject)
		if err != nil {
			return nil, err
		}
		r.store(subject, bank)
		return bank, nil
	})
	if err != nil {
		return domain.QuestionBank{}, err
	}
	return v.(domain.QuestionBank), nil
}

func (r *BankRepository) cached(subject string) (domain.QuestionBank, bool) {
	r.mu.RLock()
	entry, ok := r.entries[subject]
	r.mu.RUnlock()
	if !ok || !entry.fresh(r.clock()) {
		return domain.QuestionBank{}, false
	}
	return entry.bank, true
}

func (r *BankRepository) store(subject string, bank domain.QuestionBank) {
	entry := bankEntry{bank: bank, expires: r.clock().Add(jittered(r.ttl))}
	r.mu.Lock()
	r.entries[subject] = entry
	r.mu.Unlock()
}

// jittered stretches ttl by up to a tenth so subjects loaded together do not
// all expire together.
func jittered(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 0
	}
	return ttl + rand.N(ttl/10+1)
}
