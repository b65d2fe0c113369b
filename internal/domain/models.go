package domain

import "time"

// Status is the lifecycle state of a quiz session.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusTimedOut   Status = "timed_out"
	StatusSubmitted  Status = "submitted"
)

// Terminal reports whether the session has been finalized.
func (s Status) Terminal() bool {
	return s == StatusTimedOut || s == StatusSubmitted
}

// UnansweredLabel is shown in place of a user answer when none was given.
const UnansweredLabel = "no answer given"

// Question is a single multiple-choice question. CorrectAnswer must equal one
// of Options.
type Question struct {
	Text          string   `json:"question" validate:"required"`
	Options       []string `json:"options" validate:"min=1,dive,required"`
	CorrectAnswer string   `json:"answer" validate:"required"`
}

// Chapter is a named, ordered group of questions within a bank.
type Chapter struct {
	Name      string
	Questions []Question
}

// ViewModel is what the presentation layer renders for an in-progress screen.
type ViewModel struct {
	Subject        string   `json:"subject"`
	Chapter        string   `json:"chapter"`
	QuestionNumber int      `json:"questionNumber"`
	Total          int      `json:"total"`
	QuestionText   string   `json:"questionText"`
	Options        []string `json:"options"`
	SelectedOption *string  `json:"selectedOption"`
	IsFirst        bool     `json:"isFirst"`
	IsLast         bool     `json:"isLast"`
	TimeRemaining  int      `json:"timeRemaining"`
	Status         Status   `json:"status"`
}

// AnswerReview is the per-question line of a result report.
type AnswerReview struct {
	Number        int    `json:"number"`
	Question      string `json:"question"`
	UserAnswer    string `json:"userAnswer"`
	Answered      bool   `json:"answered"`
	CorrectAnswer string `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
}

// ResultReport summarizes a finalized session.
type ResultReport struct {
	Total        int            `json:"total"`
	CorrectCount int            `json:"correctCount"`
	WrongCount   int            `json:"wrongCount"`
	ScorePercent float64        `json:"scorePercent"`
	Answers      []AnswerReview `json:"answers"`
}

// StoredResult is an archived report together with the session it came from.
type StoredResult struct {
	ID         string       `json:"id"`
	ClientID   string       `json:"clientId"`
	Subject    string       `json:"subject"`
	Chapter    string       `json:"chapter"`
	Status     Status       `json:"status"`
	FinishedAt time.Time    `json:"finishedAt"`
	Report     ResultReport `json:"report"`
}
