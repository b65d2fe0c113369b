package app

import (
	"maps"

	"chapter-quiz-service/internal/domain"
)

// DefaultDuration is the session time limit in seconds.
const DefaultDuration = 60

// Session is one chapter attempt. It is a value: every transition returns a
// new Session and leaves the receiver untouched.
type Session struct {
	Subject       string
	Chapter       string
	Questions     []domain.Question
	CurrentIndex  int
	Selected      map[int]string
	TimeRemaining int
	Status        domain.Status
}

// NewSession starts an attempt on chapter. A non-positive duration falls back
// to DefaultDuration.
func NewSession(bank domain.QuestionBank, chapter string, duration int) (Session, error) {
	ch, ok := bank.Chapter(chapter)
	if !ok {
		return Session{}, domain.ErrChapterNotFound
	}
	if len(ch.Questions) == 0 {
		return Session{}, domain.ErrEmptyChapter
	}
	if duration <= 0 {
		duration = DefaultDuration
	}
	questions := make([]domain.Question, len(ch.Questions))
	copy(questions, ch.Questions)
	return Session{
		Subject:       bank.Subject,
		Chapter:       ch.Name,
		Questions:     questions,
		CurrentIndex:  0,
		Selected:      make(map[int]string),
		TimeRemaining: duration,
		Status:        domain.StatusInProgress,
	}, nil
}

func (s Session) active() bool {
	return s.Status == domain.StatusInProgress
}

// Select records option as the answer to the current question. The option is
// not checked against the question's choices.
func (s Session) Select(option string) Session {
	if !s.active() {
		return s
	}
	if prev, ok := s.Selected[s.CurrentIndex]; ok && prev == option {
		return s
	}
	selected := maps.Clone(s.Selected)
	if selected == nil {
		selected = make(map[int]string)
	}
	selected[s.CurrentIndex] = option
	s.Selected = selected
	return s
}

// Next moves forward one question, stopping at the last.
func (s Session) Next() Session {
	if !s.active() {
		return s
	}
	if s.CurrentIndex < len(s.Questions)-1 {
		s.CurrentIndex++
	}
	return s
}

// Previous moves back one question, stopping at the first.
func (s Session) Previous() Session {
	if !s.active() {
		return s
	}
	if s.CurrentIndex > 0 {
		s.CurrentIndex--
	}
	return s
}

// Tick consumes one second. expired is true only on the tick that ends the
// session.
func (s Session) Tick() (next Session, expired bool) {
	if !s.active() {
		return s, false
	}
	if s.TimeRemaining > 0 {
		s.TimeRemaining--
	}
	if s.TimeRemaining == 0 {
		s.Status = domain.StatusTimedOut
		return s, true
	}
	return s, false
}

// Submit finalizes an in-progress session. ok is false if it was already
// terminal.
func (s Session) Submit() (next Session, ok bool) {
	if !s.active() {
		return s, false
	}
	s.Status = domain.StatusSubmitted
	return s, true
}

// View renders the current question.
func (s Session) View() domain.ViewModel {
	view := domain.ViewModel{
		Subject:       s.Subject,
		Chapter:       s.Chapter,
		Total:         len(s.Questions),
		TimeRemaining: s.TimeRemaining,
		Status:        s.Status,
	}
	if len(s.Questions) == 0 {
		return view
	}
	q := s.Questions[s.CurrentIndex]
	view.QuestionNumber = s.CurrentIndex + 1
	view.QuestionText = q.Text
	view.Options = append([]string(nil), q.Options...)
	if opt, ok := s.Selected[s.CurrentIndex]; ok {
		view.SelectedOption = &opt
	}
	view.IsFirst = s.CurrentIndex == 0
	view.IsLast = s.CurrentIndex == len(s.Questions)-1
	return view
}
