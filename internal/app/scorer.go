package app

import (
	"math"

	"chapter-quiz-service/internal/domain"
)

// Score builds the result report for a session. An empty session scores zero
// across the board instead of dividing by zero.
func Score(s Session) domain.ResultReport {
	report := domain.ResultReport{
		Total:   len(s.Questions),
		Answers: make([]domain.AnswerReview, 0, len(s.Questions)),
	}

	for i, q := range s.Questions {
		review := domain.AnswerReview{
			Number:        i + 1,
			Question:      q.Text,
			UserAnswer:    domain.UnansweredLabel,
			CorrectAnswer: q.CorrectAnswer,
		}
		if answer, ok := s.Selected[i]; ok {
			review.UserAnswer = answer
			review.Answered = true
			review.IsCorrect = answer == q.CorrectAnswer
		}
		if review.IsCorrect {
			report.CorrectCount++
		}
		report.Answers = append(report.Answers, review)
	}

	report.WrongCount = report.Total - report.CorrectCount
	if report.Total > 0 {
		report.ScorePercent = math.Round(float64(report.CorrectCount)*10000/float64(report.Total)) / 100
	}
	return report
}
