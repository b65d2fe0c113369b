package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"chapter-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ResultStore archives finalized results in the quiz_results table.
type ResultStore struct {
	pool *pgxpool.Pool
}

func NewResultStore(pool *pgxpool.Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

func (s *ResultStore) SaveResult(ctx context.Context, result domain.StoredResult) error {
	data, err := json.Marshal(result.Report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO quiz_results (id, client_id, subject, chapter, status, score_percent, finished_at, report)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb)
		ON CONFLICT (id) DO NOTHING`,
		result.ID, result.ClientID, result.Subject, result.Chapter, string(result.Status),
		result.Report.ScorePercent, result.FinishedAt, string(data))
	if err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

func (s *ResultStore) GetResult(ctx context.Context, id string) (domain.StoredResult, error) {
	var (
		result domain.StoredResult
		status string
		raw    []byte
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, client_id, subject, chapter, status, finished_at, report
		FROM quiz_results WHERE id=$1`, id).
		Scan(&result.ID, &result.ClientID, &result.Subject, &result.Chapter, &status, &result.FinishedAt, &raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.StoredResult{}, domain.ErrResultNotFound
	}
	if err != nil {
		return domain.StoredResult{}, fmt.Errorf("get result: %w", err)
	}
	if err := json.Unmarshal(raw, &result.Report); err != nil {
		return domain.StoredResult{}, fmt.Errorf("unmarshal report: %w", err)
	}
	result.Status = domain.Status(status)
	return result, nil
}
