// Package wizard is the three-step application state machine and its
// submission pipeline.
package wizard

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"fundingintake/internal/shared/logging"
	"fundingintake/internal/shared/models"
)

// Submitter runs a submission. *Pipeline implements it.
type Submitter interface {
	Submit(ctx context.Context, draft models.ApplicationRecord) (Receipt, error)
}

// StepHook is called after every step change, outside the controller lock.
type StepHook func(from, to Step)

type Option func(*Controller)

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func WithStepHook(h StepHook) Option {
	return func(c *Controller) { c.hooks = append(c.hooks, h) }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.logger = logging.OrNop(l).Named("wizard") }
}

// Controller owns one draft and the current step. It is safe for concurrent
// use; at most one submission runs at a time.
type Controller struct {
	submitter Submitter
	now       func() time.Time
	hooks     []StepHook
	logger    *zap.Logger

	mu         sync.Mutex
	step       Step
	draft      models.ApplicationRecord
	frozen     bool
	submitting bool
	lastErr    error
	receipt    *Receipt
}

func NewController(submitter Submitter, opts ...Option) *Controller {
	c := &Controller{
		submitter: submitter,
		now:       time.Now,
		logger:    zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	c.step = Step1
	c.draft = NewDraft(c.now())
	return c
}

func (c *Controller) Step() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// Draft returns a copy of the live draft.
func (c *Controller) Draft() models.ApplicationRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Submitting reports whether a submission is outstanding.
func (c *Controller) Submitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitting
}

// Err returns the error of the last failed submission, cleared by the next
// attempt.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// ErrorMessage returns the session-visible text of Err, or "".
func (c *Controller) ErrorMessage() string {
	err := c.Err()
	if err == nil {
		return ""
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return pe.Message
	}
	return err.Error()
}

// Receipt returns the receipt of the successful submission.
func (c *Controller) Receipt() (Receipt, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.receipt == nil {
		return Receipt{}, false
	}
	return *c.receipt, true
}

// Set assigns a string field of the draft by its wire name.
func (c *Controller) Set(field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editableLocked(); err != nil {
		return err
	}
	return setField(&c.draft, field, value)
}

func (c *Controller) SetConsent(accepted bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editableLocked(); err != nil {
		return err
	}
	c.draft.TermsAccepted = accepted
	return nil
}

func (c *Controller) editableLocked() error {
	if c.frozen {
		return ErrDraftFrozen
	}
	if c.submitting {
		return ErrSubmissionInFlight
	}
	return nil
}

// Validate checks the current step without transitioning.
func (c *Controller) Validate() []FieldError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Validate(c.step, c.draft, c.now())
}

// Next advances from Step1 or Step2 when the current step validates.
func (c *Controller) Next() error {
	c.mu.Lock()
	from := c.step
	if from != Step1 && from != Step2 {
		c.mu.Unlock()
		return ErrInvalidTransition
	}
	if fields := Validate(from, c.draft, c.now()); len(fields) > 0 {
		c.mu.Unlock()
		return &ValidationError{Step: from, Fields: fields}
	}
	c.step = from + 1
	c.mu.Unlock()

	c.fire(from, from+1)
	return nil
}

// Back goes one step back. It is a no-op on Step1.
func (c *Controller) Back() error {
	c.mu.Lock()
	from := c.step
	switch {
	case from == Step1:
		c.mu.Unlock()
		return nil
	case from == Submitted:
		c.mu.Unlock()
		return ErrInvalidTransition
	case c.submitting:
		c.mu.Unlock()
		return ErrSubmissionInFlight
	}
	c.step = from - 1
	c.mu.Unlock()

	c.fire(from, from-1)
	return nil
}

// Submit runs the submission from Step3. Consent is checked before anything
// else and a missing consent never reaches the collaborator. On failure the
// wizard stays on Step3 with the draft untouched.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.step != Step3 {
		c.mu.Unlock()
		return ErrInvalidTransition
	}
	if c.submitting {
		c.mu.Unlock()
		return ErrSubmissionInFlight
	}
	if !c.draft.TermsAccepted {
		c.lastErr = ErrConsentRequired
		c.mu.Unlock()
		return ErrConsentRequired
	}
	now := c.now()
	for _, s := range []Step{Step1, Step2, Step3} {
		if fields := Validate(s, c.draft, now); len(fields) > 0 {
			verr := &ValidationError{Step: s, Fields: fields}
			c.lastErr = verr
			c.mu.Unlock()
			return verr
		}
	}
	c.submitting = true
	c.lastErr = nil
	draft := c.draft
	c.mu.Unlock()

	receipt, err := c.submitter.Submit(ctx, draft)

	c.mu.Lock()
	c.submitting = false
	if err != nil {
		c.lastErr = err
		c.mu.Unlock()
		return err
	}
	c.step = Submitted
	c.frozen = true
	c.receipt = &receipt
	c.mu.Unlock()

	c.fire(Step3, Submitted)
	return nil
}

// Reset discards the submitted draft and starts over on Step1.
func (c *Controller) Reset() error {
	c.mu.Lock()
	if c.step != Submitted {
		c.mu.Unlock()
		return ErrInvalidTransition
	}
	c.step = Step1
	c.draft = NewDraft(c.now())
	c.frozen = false
	c.receipt = nil
	c.lastErr = nil
	c.mu.Unlock()

	c.fire(Submitted, Step1)
	return nil
}

func (c *Controller) fire(from, to Step) {
	c.logger.Debug("step changed", zap.Stringer("from", from), zap.Stringer("to", to))
	for _, h := range c.hooks {
		h(from, to)
	}
}
