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

// BankLoader loads question bank documents from Postgres.
type BankLoader struct {
	pool *pgxpool.Pool
}

func NewBankLoader(pool *pgxpool.Pool) *BankLoader {
	return &BankLoader{pool: pool}
}

func (l *BankLoader) LoadBank(ctx context.Context, subject string) (domain.QuestionBank, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM question_banks WHERE subject=$1`, subject).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.QuestionBank{}, domain.ErrSubjectNotFound
	}
	if err != nil {
		return domain.QuestionBank{}, fmt.Errorf("%w: load bank: %v", domain.ErrLoadFailed, err)
	}
	return domain.ParseBank(subject, raw)
}

// SaveBank upserts a bank. The column is plain json, so the stored text and
// with it the chapter order come back exactly as marshalled.
func (l *BankLoader) SaveBank(ctx context.Context, bank domain.QuestionBank) error {
	data, err := json.Marshal(bank)
	if err != nil {
		return fmt.Errorf("marshal bank: %w", err)
	}
	_, err = l.pool.Exec(ctx, `
		INSERT INTO question_banks (subject, data, updated_at) VALUES ($1, $2::json, now())
		ON CONFLICT (subject) DO UPDATE SET data=EXCLUDED.data, updated_at=now()`,
		bank.Subject, string(data))
	if err != nil {
		return fmt.Errorf("save bank: %w", err)
	}
	return nil
}
