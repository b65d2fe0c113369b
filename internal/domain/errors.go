package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a client has no quiz controller.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSubjectNotFound indicates the bank source has no bank for a subject.
	ErrSubjectNotFound = errors.New("subject not found")
	// ErrLoadFailed wraps network, read and parse failures while fetching a bank.
	ErrLoadFailed = errors.New("question bank load failed")
	// ErrNoBank is returned when a chapter is chosen before any subject.
	ErrNoBank = errors.New("no question bank loaded")
	// ErrChapterNotFound indicates a chapter name absent from the loaded bank.
	ErrChapterNotFound = errors.New("chapter not found")
	// ErrEmptyChapter refuses sessions that would have nothing to score.
	ErrEmptyChapter = errors.New("chapter has no questions")
	// ErrNoActiveSession is returned for actions issued before a chapter is loaded.
	ErrNoActiveSession = errors.New("no active quiz session")
	// ErrResultNotFound indicates an unknown report id.
	ErrResultNotFound = errors.New("result not found")
)
