package app

import (
	"context"
	"sync"
	"time"

	"chapter-quiz-service/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// EventType names what a controller event carries.
type EventType string

const (
	EventView   EventType = "view"
	EventResult EventType = "result"
)

// Event is pushed to subscribers after every state change.
type Event struct {
	Type   EventType
	View   *domain.ViewModel
	Result *domain.StoredResult
}

// Finalizer observes each finalized session exactly once.
type Finalizer func(result domain.StoredResult)

// ControllerOptions tunes a Controller. Zero values select the defaults.
type ControllerOptions struct {
	Duration   int
	Interval   time.Duration
	Ticker     TickerFactory
	Now        func() time.Time
	NewID      func() string
	Logger     zerolog.Logger
	Finalizers []Finalizer
}

func (o ControllerOptions) withDefaults() ControllerOptions {
	if o.Duration <= 0 {
		o.Duration = DefaultDuration
	}
	if o.Interval <= 0 {
		o.Interval = time.Second
	}
	if o.Ticker == nil {
		o.Ticker = RealTicker
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	return o
}

// Controller owns one client's bank, current session, countdown and result.
// All operations are serialized; each runs to completion before the next.
type Controller struct {
	id   string
	opts ControllerOptions
	log  zerolog.Logger

	mu          sync.Mutex
	bank        *domain.QuestionBank
	session     *Session
	generation  uint64
	countdown   *Countdown
	result      *domain.StoredResult
	announced   bool
	subscribers map[chan Event]struct{}
	closed      bool
	attached    int
}

// NewController creates an idle controller for a client.
func NewController(id string, opts ControllerOptions) *Controller {
	opts = opts.withDefaults()
	return &Controller{
		id:          id,
		opts:        opts,
		log:         opts.Logger.With().Str("client_id", id).Logger(),
		subscribers: make(map[chan Event]struct{}),
	}
}

// ID returns the client id.
func (c *Controller) ID() string {
	return c.id
}

// SetBank replaces the loaded bank and discards any session built on the old one.
func (c *Controller) SetBank(bank domain.QuestionBank) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
	c.bank = &bank
}

// Bank returns the loaded bank, if any.
func (c *Controller) Bank() (domain.QuestionBank, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bank == nil {
		return domain.QuestionBank{}, false
	}
	return *c.bank, true
}

// LoadChapter starts a fresh session on chapter, cancelling any prior countdown
// before the new one is started.
func (c *Controller) LoadChapter(chapter string) (domain.ViewModel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bank == nil {
		return domain.ViewModel{}, domain.ErrNoBank
	}
	session, err := NewSession(*c.bank, chapter, c.opts.Duration)
	if err != nil {
		return domain.ViewModel{}, err
	}

	c.resetLocked()
	c.session = &session
	gen := c.generation
	c.countdown = StartCountdown(context.Background(), c.opts.Interval, c.opts.Ticker, func() {
		c.tick(gen)
	})
	c.log.Info().
		Str("subject", session.Subject).
		Str("chapter", session.Chapter).
		Int("questions", len(session.Questions)).
		Int("duration", session.TimeRemaining).
		Msg("session started")

	view := session.View()
	c.publishLocked(Event{Type: EventView, View: &view})
	return view, nil
}

// Select answers the current question. Ignored once the session is terminal.
func (c *Controller) Select(option string) (domain.ViewModel, error) {
	return c.apply(func(s Session) Session { return s.Select(option) })
}

// Next moves to the next question, clamped at the last.
func (c *Controller) Next() (domain.ViewModel, error) {
	return c.apply(Session.Next)
}

// Previous moves to the previous question, clamped at the first.
func (c *Controller) Previous() (domain.ViewModel, error) {
	return c.apply(Session.Previous)
}

func (c *Controller) apply(fn func(Session) Session) (domain.ViewModel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return domain.ViewModel{}, domain.ErrNoActiveSession
	}
	if c.session.Status.Terminal() {
		return c.session.View(), nil
	}
	next := fn(*c.session)
	c.session = &next
	view := next.View()
	c.publishLocked(Event{Type: EventView, View: &view})
	return view, nil
}

// Tick advances the current session's clock by one second.
func (c *Controller) Tick() {
	c.mu.Lock()
	gen := c.generation
	c.mu.Unlock()
	c.tick(gen)
}

func (c *Controller) tick(gen uint64) {
	c.mu.Lock()
	if c.closed || gen != c.generation || c.session == nil || c.session.Status.Terminal() {
		c.mu.Unlock()
		return
	}
	next, expired := c.session.Tick()
	c.session = &next
	view := next.View()
	c.publishLocked(Event{Type: EventView, View: &view})

	var final *domain.StoredResult
	if expired {
		c.log.Info().Str("chapter", next.Chapter).Msg("session timed out")
		final = c.finalizeLocked()
	}
	c.mu.Unlock()

	if final != nil {
		c.completeFinalization(*final)
	}
}

// Submit finalizes the session. Repeated calls return the same result.
func (c *Controller) Submit() (domain.StoredResult, error) {
	c.mu.Lock()
	if c.session == nil {
		c.mu.Unlock()
		return domain.StoredResult{}, domain.ErrNoActiveSession
	}
	next, ok := c.session.Submit()
	if !ok {
		result := *c.result
		c.mu.Unlock()
		return result, nil
	}
	c.session = &next
	final := c.finalizeLocked()
	c.mu.Unlock()

	c.completeFinalization(*final)
	return *final, nil
}

// Result returns the finalized result of the current session, if any.
func (c *Controller) Result() (domain.StoredResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil {
		return domain.StoredResult{}, false
	}
	return *c.result, true
}

// View returns the current screen, if a session exists.
func (c *Controller) View() (domain.ViewModel, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return domain.ViewModel{}, false
	}
	return c.session.View(), true
}

// Subscribe returns a channel of events and its cancel function. The current
// state is delivered first.
func (c *Controller) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 8)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	c.subscribers[ch] = struct{}{}
	switch {
	case c.result != nil && c.announced:
		result := *c.result
		ch <- Event{Type: EventResult, Result: &result}
	case c.session != nil:
		view := c.session.View()
		ch <- Event{Type: EventView, View: &view}
	}
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		if _, ok := c.subscribers[ch]; ok {
			delete(c.subscribers, ch)
			close(ch)
		}
		c.mu.Unlock()
	}
	return ch, cancel
}

// Close stops the countdown and ends every subscription.
// Attach counts one more connection driving this controller.
func (c *Controller) Attach() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attached++
	return c.attached
}

// Detach drops one connection and reports how many are left.
func (c *Controller) Detach() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.attached > 0 {
		c.attached--
	}
	return c.attached
}

// Connections reports how many connections are attached.
func (c *Controller) Connections() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attached
}

func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.resetLocked()
	c.closed = true
	for ch := range c.subscribers {
		delete(c.subscribers, ch)
		close(ch)
	}
}

// resetLocked cancels the running countdown and drops the session. Bumping the
// generation makes any tick already in flight a no-op.
func (c *Controller) resetLocked() {
	c.countdown.Stop()
	c.countdown = nil
	c.generation++
	c.session = nil
	c.result = nil
	c.announced = false
}

func (c *Controller) finalizeLocked() *domain.StoredResult {
	c.countdown.Stop()
	c.countdown = nil

	report := Score(*c.session)
	result := domain.StoredResult{
		ID:         c.opts.NewID(),
		ClientID:   c.id,
		Subject:    c.session.Subject,
		Chapter:    c.session.Chapter,
		Status:     c.session.Status,
		FinishedAt: c.opts.Now(),
		Report:     report,
	}
	c.result = &result
	c.log.Info().
		Str("result_id", result.ID).
		Str("status", string(result.Status)).
		Int("correct", report.CorrectCount).
		Int("wrong", report.WrongCount).
		Float64("score", report.ScorePercent).
		Msg("session finalized")
	return &result
}

// completeFinalization runs the finalizers and only then announces the result,
// so anything a finalizer persists is visible to subscribers reacting to it.
func (c *Controller) completeFinalization(result domain.StoredResult) {
	for _, fn := range c.opts.Finalizers {
		fn(result)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil || c.result.ID != result.ID {
		return
	}
	c.announced = true
	c.publishLocked(Event{Type: EventResult, Result: &result})
}

func (c *Controller) publishLocked(ev Event) {
	for ch := range c.subscribers {
		select {
		case ch <- ev:
		default:
			// drop the oldest pending event so a slow reader never blocks the session
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}
