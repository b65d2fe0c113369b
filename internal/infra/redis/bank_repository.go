package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"chapter-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// BankLoader fetches a subject's question bank from a backing source.
type BankLoader interface {
	LoadBank(ctx context.Context, subject string) (domain.QuestionBank, error)
}

// BankRepository caches whole banks in Redis and falls back to a loader on miss.
// Banks are stored as: SET quiz:bank:{subject} {json} EX ttl
// The JSON keeps chapter order.
type BankRepository struct {
	client *redis.Client
	loader BankLoader
	ttl    time.Duration
	log    zerolog.Logger
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewBankRepository(client *redis.Client, loader BankLoader, ttl time.Duration, log zerolog.Logger) *BankRepository {
	return &BankRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		log:    log,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *BankRepository) GetBank(ctx context.Context, subject string) (domain.QuestionBank, error) {
	if bank, ok := r.cached(ctx, subject); ok {
		return bank, nil
	}

	result, err, _ := r.sf.Do(subject, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if bank, ok := r.cached(ctx, subject); ok {
			return bank, nil
		}

		bank, err := r.loader.LoadBank(ctx, subject)
		if err != nil {
			return domain.QuestionBank{}, err
		}

		data, err := json.Marshal(bank)
		if err == nil {
			err = r.client.Set(ctx, r.key(subject), data, r.ttlWithJitter()).Err()
		}
		if err != nil {
			r.log.Warn().Err(err).Str("subject", subject).Msg("bank cache write failed")
		}
		return bank, nil
	})
	if err != nil {
		return domain.QuestionBank{}, err
	}
	return result.(domain.QuestionBank), nil
}

func (r *BankRepository) cached(ctx context.Context, subject string) (domain.QuestionBank, bool) {
	data, err := r.client.Get(ctx, r.key(subject)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.Warn().Err(err).Str("subject", subject).Msg("bank cache read failed")
		}
		return domain.QuestionBank{}, false
	}
	var bank domain.QuestionBank
	if err := json.Unmarshal(data, &bank); err != nil {
		r.log.Warn().Err(err).Str("subject", subject).Msg("discarding corrupt cached bank")
		return domain.QuestionBank{}, false
	}
	bank.Subject = subject
	return bank, true
}

func (r *BankRepository) key(subject string) string {
	return "quiz:bank:" + subject
}

func (r *BankRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
