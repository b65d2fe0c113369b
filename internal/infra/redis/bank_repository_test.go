package redis

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"chapter-quiz-service/internal/domain"
	"chapter-quiz-service/internal/infra/memory"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func TestBankRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	loader := &countingLoader{
		BankLoader: memory.NewStaticBankLoader(map[string]domain.QuestionBank{
			"math": sampleBank(),
		}),
	}
	repo := NewBankRepository(client, loader, time.Minute, zerolog.Nop())

	bank, err := repo.GetBank(context.Background(), "math")
	if err != nil {
		t.Fatalf("get bank: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("quiz:bank:math") {
		t.Fatalf("expected bank cached in redis")
	}
	if ttl := mr.TTL("quiz:bank:math"); ttl < time.Minute {
		t.Fatalf("expected ttl >= 1m, got %v", ttl)
	}

	// Second call should hit cache, loader not incremented.
	cached, err := repo.GetBank(context.Background(), "math")
	if err != nil {
		t.Fatalf("get cached bank: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if !reflect.DeepEqual(cached.ChapterNames(), bank.ChapterNames()) || cached.Subject != "math" {
		t.Fatalf("cached bank differs: %+v", cached)
	}
}

func TestBankRepositoryRecoversFromCorruptCache(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	_ = mr.Set("quiz:bank:math", "{broken")
	loader := &countingLoader{
		BankLoader: memory.NewStaticBankLoader(map[string]domain.QuestionBank{"math": sampleBank()}),
	}
	repo := NewBankRepository(newClient(mr), loader, time.Minute, zerolog.Nop())

	if _, err := repo.GetBank(context.Background(), "math"); err != nil {
		t.Fatalf("get bank: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected reload from source, loader calls=%d", loader.calls)
	}
}

func TestBankRepositoryDoesNotCacheFailures(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	repo := NewBankRepository(newClient(mr), memory.NewStaticBankLoader(nil), time.Minute, zerolog.Nop())
	if _, err := repo.GetBank(context.Background(), "math"); !errors.Is(err, domain.ErrSubjectNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if mr.Exists("quiz:bank:math") {
		t.Fatalf("failure must not be cached")
	}
}

type countingLoader struct {
	memory.BankLoader
	calls int
}

func (l *countingLoader) LoadBank(ctx context.Context, subject string) (domain.QuestionBank, error) {
	l.calls++
	return l.BankLoader.LoadBank(ctx, subject)
}

func sampleBank() domain.QuestionBank {
	return domain.QuestionBank{
		Chapters: []domain.Chapter{
			{Name: "Ch1", Questions: []domain.Question{
				{Text: "2+2?", Options: []string{"3", "4"}, CorrectAnswer: "4"},
			}},
			{Name: "Ch0", Questions: []domain.Question{
				{Text: "0+0?", Options: []string{"0", "1"}, CorrectAnswer: "0"},
			}},
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
