package cli

import (
	"context"
	"time"

	"chapter-quiz-service/internal/app"
	"chapter-quiz-service/internal/config"
	"chapter-quiz-service/internal/domain"
	"chapter-quiz-service/internal/infra/memory"
	pgstore "chapter-quiz-service/internal/infra/postgres"
	redisstore "chapter-quiz-service/internal/infra/redis"
	"chapter-quiz-service/internal/infra/source"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// backends holds the optional external connections named in the config.
type backends struct {
	redis *redis.Client
	pool  *pgxpool.Pool
}

func connect(ctx context.Context, cfg config.Config, log zerolog.Logger) (*backends, error) {
	b := &backends{}
	if cfg.Redis.Addr != "" {
		b.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := b.redis.Ping(ctx).Err(); err != nil {
			b.close()
			return nil, err
		}
		log.Info().Str("addr", cfg.Redis.Addr).Int("db", cfg.Redis.DB).Msg("redis connected")
	}
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.close()
			return nil, err
		}
		b.pool = pool
		log.Info().Msg("postgres connected")
	}
	return b, nil
}

func (b *backends) close() {
	if b.redis != nil {
		_ = b.redis.Close()
	}
	if b.pool != nil {
		b.pool.Close()
	}
}

// bankLoader picks the bank source: Postgres, then HTTP, then a directory,
// falling back to the built-in sample bank.
func (b *backends) bankLoader(cfg config.Config) memory.BankLoader {
	switch {
	case b.pool != nil:
		return pgstore.NewBankLoader(b.pool)
	case cfg.Banks.BaseURL != "":
		return source.NewHTTPLoader(cfg.Banks.BaseURL, nil)
	case cfg.Banks.Dir != "":
		return source.NewFileLoader(cfg.Banks.Dir)
	default:
		return memory.NewStaticBankLoader(sampleBanks())
	}
}

func (b *backends) bankRepository(cfg config.Config, log zerolog.Logger) app.BankRepository {
	ttl := config.TTLDuration(cfg.Banks.TTL, 10*time.Minute)
	if b.redis != nil {
		return redisstore.NewBankRepository(b.redis, b.bankLoader(cfg), ttl, log)
	}
	return memory.NewBankRepository(b.bankLoader(cfg), ttl)
}

func (b *backends) resultStore(cfg config.Config) app.ResultStore {
	switch {
	case b.pool != nil:
		return pgstore.NewResultStore(b.pool)
	case b.redis != nil:
		return redisstore.NewResultStore(b.redis, config.TTLDuration(cfg.Results.TTL, 24*time.Hour))
	default:
		return memory.NewResultStore()
	}
}

func (b *backends) sessionStore(cfg config.Config) app.SessionRepository {
	if b.redis != nil {
		return redisstore.NewSessionStore(b.redis, config.TTLDuration(cfg.Redis.TTL, 10*time.Minute))
	}
	return memory.NewSessionStore()
}

// sampleBanks is served when no bank source is configured.
func sampleBanks() map[string]domain.QuestionBank {
	return map[string]domain.QuestionBank{
		"math": {
			Chapters: []domain.Chapter{
				{
					Name: "Arithmetic",
					Questions: []domain.Question{
						{Text: "What is 2 + 2?", Options: []string{"3", "4", "5"}, CorrectAnswer: "4"},
						{Text: "What is 9 - 3?", Options: []string{"6", "5", "7"}, CorrectAnswer: "6"},
					},
				},
				{
					Name: "Geometry",
					Questions: []domain.Question{
						{Text: "How many sides does a triangle have?", Options: []string{"3", "4"}, CorrectAnswer: "3"},
					},
				},
			},
		},
	}
}
