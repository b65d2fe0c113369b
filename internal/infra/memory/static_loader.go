package memory

import (
	"context"
	"fmt"

	"chapter-quiz-service/internal/domain"
)

// StaticBankLoader serves banks compiled into the binary or built by tests.
// Banks are held to the same rules as ones parsed from JSON.
type StaticBankLoader struct {
	banks map[string]domain.QuestionBank
}

func NewStaticBankLoader(banks map[string]domain.QuestionBank) *StaticBankLoader {
	return &StaticBankLoader{banks: banks}
}

func (l *StaticBankLoader) LoadBank(_ context.Context, subject string) (domain.QuestionBank, error) {
	bank, ok := l.banks[subject]
	if !ok {
		return domain.QuestionBank{}, domain.ErrSubjectNotFound
	}
	if err := bank.Validate(); err != nil {
		return domain.QuestionBank{}, fmt.Errorf("%w: subject %q: %v", domain.ErrLoadFailed, subject, err)
	}
	bank.Subject = subject
	return bank, nil
}
