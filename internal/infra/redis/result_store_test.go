package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"chapter-quiz-service/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
)

func TestResultStoreRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewResultStore(newClient(mr), time.Hour)
	ctx := context.Background()

	if _, err := store.GetResult(ctx, "missing"); !errors.Is(err, domain.ErrResultNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	want := domain.StoredResult{
		ID:      "r1",
		Chapter: "Ch1",
		Status:  domain.StatusTimedOut,
		Report: domain.ResultReport{
			Total:      1,
			WrongCount: 1,
			Answers: []domain.AnswerReview{
				{Number: 1, Question: "2+2?", UserAnswer: domain.UnansweredLabel, CorrectAnswer: "4"},
			},
		},
	}
	if err := store.SaveResult(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	if ttl := mr.TTL("quiz:result:r1"); ttl != time.Hour {
		t.Fatalf("expected 1h ttl, got %v", ttl)
	}
	got, err := store.GetResult(ctx, "r1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.StatusTimedOut || got.Report.Answers[0].UserAnswer != domain.UnansweredLabel {
		t.Fatalf("unexpected result %+v", got)
	}
}
