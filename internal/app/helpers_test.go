package app

import (
	"fmt"
	"time"

	"chapter-quiz-service/internal/domain"
)

// arithmeticBank holds the single-question chapter used by the worked examples
// plus a larger chapter and an empty one.
func arithmeticBank() domain.QuestionBank {
	return domain.QuestionBank{
		Subject: "math",
		Chapters: []domain.Chapter{
			{Name: "Ch1", Questions: []domain.Question{
				{Text: "2+2?", Options: []string{"3", "4"}, CorrectAnswer: "4"},
			}},
			{Name: "Ch2", Questions: numberedQuestions(3)},
			{Name: "Empty"},
		},
	}
}

func numberedQuestions(n int) []domain.Question {
	qs := make([]domain.Question, n)
	for i := range qs {
		answer := fmt.Sprintf("a%d", i)
		qs[i] = domain.Question{
			Text:          fmt.Sprintf("q%d", i),
			Options:       []string{answer, "other"},
			CorrectAnswer: answer,
		}
	}
	return qs
}

// idleTicker never fires; tests drive the clock through Tick.
func idleTicker(time.Duration) (<-chan time.Time, func()) {
	return make(chan time.Time), func() {}
}

func fixedNow() time.Time {
	return time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
}
