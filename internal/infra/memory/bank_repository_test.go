package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"chapter-quiz-service/internal/domain"
)

func TestBankRepositoryCaches(t *testing.T) {
	loader := &countingLoader{
		BankLoader: NewStaticBankLoader(map[string]domain.QuestionBank{
			"math": sampleBank(),
		}),
	}
	repo := NewBankRepository(loader, time.Minute)

	bank, err := repo.GetBank(context.Background(), "math")
	if err != nil {
		t.Fatalf("get bank: %v", err)
	}
	if bank.Subject != "math" {
		t.Fatalf("expected subject math, got %q", bank.Subject)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := repo.GetBank(context.Background(), "math"); err != nil {
		t.Fatalf("get bank 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestBankRepositoryReloadsAfterExpiry(t *testing.T) {
	loader := &countingLoader{
		BankLoader: NewStaticBankLoader(map[string]domain.QuestionBank{"math": sampleBank()}),
	}
	repo := NewBankRepository(loader, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.clock = func() time.Time { return now }

	_, _ = repo.GetBank(context.Background(), "math")
	now = now.Add(2 * time.Minute)
	_, _ = repo.GetBank(context.Background(), "math")
	if loader.calls != 2 {
		t.Fatalf("expected reload after ttl, loader calls %d", loader.calls)
	}
}

func TestBankRepositoryPropagatesNotFound(t *testing.T) {
	repo := NewBankRepository(NewStaticBankLoader(nil), time.Minute)
	if _, err := repo.GetBank(context.Background(), "history"); !errors.Is(err, domain.ErrSubjectNotFound) {
		t.Fatalf("expected subject not found, got %v", err)
	}
}

type countingLoader struct {
	BankLoader
	calls int
}

func (l *countingLoader) LoadBank(ctx context.Context, subject string) (domain.QuestionBank, error) {
	l.calls++
	return l.BankLoader.LoadBank(ctx, subject)
}

func sampleBank() domain.QuestionBank {
	return domain.QuestionBank{
		Chapters: []domain.Chapter{
			{
				Name: "Ch1",
				Questions: []domain.Question{
					{Text: "2+2?", Options: []string{"3", "4"}, CorrectAnswer: "4"},
				},
			},
		},
	}
}

func TestBankRepositoryDoesNotCacheFailures(t *testing.T) {
	broken := domain.QuestionBank{Chapters: []domain.Chapter{{
		Name:      "Ch1",
		Questions: []domain.Question{{Text: "2+2?", Options: []string{"3", "5"}, CorrectAnswer: "4"}},
	}}}
	loader := &countingLoader{BankLoader: NewStaticBankLoader(map[string]domain.QuestionBank{"math": broken})}
	repo := NewBankRepository(loader, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := repo.GetBank(context.Background(), "math"); !errors.Is(err, domain.ErrLoadFailed) {
			t.Fatalf("expected load failure, got %v", err)
		}
	}
	if loader.calls != 2 {
		t.Fatalf("expected each failed pick to reach the loader, got %d calls", loader.calls)
	}
}

func TestBankRepositoryLoadSurvivesCancelledCaller(t *testing.T) {
	repo := NewBankRepository(ctxCheckingLoader{}, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := repo.GetBank(ctx, "math"); err != nil {
		t.Fatalf("shared load must not see the caller's cancellation: %v", err)
	}
}

type ctxCheckingLoader struct{}

func (ctxCheckingLoader) LoadBank(ctx context.Context, subject string) (domain.QuestionBank, error) {
	if err := ctx.Err(); err != nil {
		return domain.QuestionBank{}, err
	}
	bank := sampleBank()
	bank.Subject = subject
	return bank, nil
}

func TestJitterStaysWithinTenPercent(t *testing.T) {
	for i := 0; i < 100; i++ {
		if d := jittered(time.Minute); d < time.Minute || d > time.Minute+6*time.Second {
			t.Fatalf("jitter out of range: %v", d)
		}
	}
	if jittered(0) != 0 {
		t.Fatalf("expected zero ttl to stay zero")
	}
}
