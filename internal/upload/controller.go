package upload

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/mediclaim/internal/config"
	"github.com/nao1215/mediclaim/internal/model"
	"github.com/nao1215/mediclaim/internal/validator"
)

var (
	// ErrBusy is returned when Analyze or Reset is called while a request is in flight.
	ErrBusy = errors.New("an analysis is already in progress")

	// ErrNoDocument is the cause of the failure when Analyze is given a nil document.
	ErrNoDocument = errors.New("no document to analyze")
)

// Submitter sends a document to the analysis service.
// *client.Client implements it.
type Submitter interface {
	Submit(ctx context.Context, doc *model.Document, onSent func()) (*model.AnalysisResult, error)
}

// Controller runs the upload state machine for one document at a time.
type Controller struct {
	submitter Submitter
	validate  func(*model.Document) error
	observers []Observer
	logger    *slog.Logger
	newTicker TickerFactory
	now       func() time.Time

	interval time.Duration
	step     int
	ceiling  int

	// mu guards session. Observers are called with mu held.
	mu      sync.Mutex
	session Session
}

// Option configures a Controller.
type Option func(*Controller)

// WithObserver adds an observer of session snapshots.
func WithObserver(o Observer) Option {
	return func(c *Controller) {
		c.observers = append(c.observers, o)
	}
}

// WithLogger sets a custom logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithTicker replaces the progress tick source, for deterministic tests.
func WithTicker(f TickerFactory) Option {
	return func(c *Controller) {
		c.newTicker = f
	}
}

// WithProgress sets the tick period, step and ceiling of synthetic progress.
// Non-positive values keep the defaults; the ceiling is kept below 100.
func WithProgress(interval time.Duration, step, ceiling int) Option {
	return func(c *Controller) {
		if interval > 0 {
			c.interval = interval
		}
		if step > 0 {
			c.step = step
		}
		if ceiling > 0 && ceiling < 100 {
			c.ceiling = ceiling
		}
	}
}

// WithValidator replaces validator.Validate.
func WithValidator(f func(*model.Document) error) Option {
	return func(c *Controller) {
		c.validate = f
	}
}

// NewController creates a Controller that submits through s.
func NewController(s Submitter, opts ...Option) *Controller {
	c := &Controller{
		submitter: s,
		validate:  validator.Validate,
		newTicker: NewTimeTicker,
		now:       time.Now,
		interval:  config.DefaultProgressInterval,
		step:      config.DefaultProgressStep,
		ceiling:   config.DefaultProgressCeiling,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Session returns a snapshot of the current session.
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Reset returns a finished session to Idle.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session.Phase.InFlight() {
		return ErrBusy
	}
	c.session = Session{}
	c.notifyLocked()
	return nil
}

// Analyze validates doc, submits it and waits for the outcome.
//
// On success the session ends in Complete with progress 100. Every failure
// ends the session in Failed with progress 0 and is returned as an
// *model.AnalysisError. A call made while another is in flight returns
// ErrBusy and leaves the running session untouched.
func (c *Controller) Analyze(ctx context.Context, doc *model.Document) (*model.AnalysisResult, error) {
	if err := c.begin(doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, c.fail(model.NewServiceRejectedUnknown(0, ErrNoDocument))
	}

	if err := c.validate(doc); err != nil {
		return nil, c.fail(err)
	}

	c.transition(PhaseSubmitting, func(s *Session) {
		s.Progress = 0
		s.Stage = StageFor(0)
	})

	driverCtx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(driverCtx)
	g.Go(func() error {
		c.drive(gctx)
		return nil
	})
	stop := func() {
		cancel()
		_ = g.Wait() //nolint:errcheck // drive never returns an error
	}
	defer stop()

	c.logger.Debug("submitting document",
		"session", c.Session().ID,
		"document", doc.Name,
		"fingerprint", doc.ShortFingerprint(),
	)

	result, err := c.submitter.Submit(ctx, doc, c.markSent)
	stop()

	if err != nil {
		return nil, c.fail(err)
	}
	if result == nil {
		return nil, c.fail(model.NewServiceRejectedUnknown(0, errors.New("empty result")))
	}

	c.transition(PhaseComplete, func(s *Session) {
		s.Progress = 100
		s.Stage = StageFor(100)
		s.FinishedAt = c.now()
	})
	c.logger.Debug("analysis complete", "session", c.Session().ID)
	return result, nil
}

// begin starts a new session, or returns ErrBusy.
func (c *Controller) begin(doc *model.Document) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session.Phase.InFlight() {
		return ErrBusy
	}

	var name string
	if doc != nil {
		name = doc.Name
	}
	c.session = Session{
		ID:           uuid.NewString(),
		Phase:        PhaseIdle,
		DocumentName: name,
		StartedAt:    c.now(),
	}
	c.notifyLocked()

	c.session.Phase = PhaseValidating
	c.notifyLocked()
	return nil
}

// markSent is the client's callback once the request has been written.
// It may run on another goroutine, and after the session already ended.
func (c *Controller) markSent() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session.Phase != PhaseSubmitting {
		return
	}
	c.session.Phase = PhaseAwaitingResult
	c.notifyLocked()
}

// fail moves the session to Failed and returns the classified error.
func (c *Controller) fail(err error) *model.AnalysisError {
	ae := model.AsAnalysisError(err)
	c.transition(PhaseFailed, func(s *Session) {
		s.Progress = 0
		s.Stage = ""
		s.Err = ae
		s.FinishedAt = c.now()
	})
	c.logger.Warn("analysis failed",
		"session", c.Session().ID,
		"kind", ae.Kind.String(),
		"status", ae.StatusCode,
		"error", ae.Error(),
	)
	return ae
}

func (c *Controller) transition(p Phase, mutate func(*Session)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.session.Phase = p
	if mutate != nil {
		mutate(&c.session)
	}
	c.notifyLocked()
}

func (c *Controller) notifyLocked() {
	snapshot := c.session
	for _, o := range c.observers {
		o.Observe(snapshot)
	}
}
