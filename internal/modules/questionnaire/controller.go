package questionnaire

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/majorcompass-backend/internal/platform/logger"
)

type Phase string

const (
	PhaseResuming   Phase = "resuming"
	PhaseAnswering  Phase = "answering"
	PhaseSubmitting Phase = "submitting"
	PhaseDone       Phase = "done"
	PhaseExited     Phase = "exited"
)

type SessionResolver interface {
	Resolve(ctx context.Context, ownerID uuid.UUID, forceFresh bool) (Resolution, error)
}

type CompletionFinalizer interface {
	Finalize(ctx context.Context, ownerID uuid.UUID, attemptID *uuid.UUID, answers AnswerState) (*Completion, error)
}

type ControllerDeps struct {
	Catalog   *Catalog
	Resolver  SessionResolver
	Store     AttemptStore
	Finalizer CompletionFinalizer
	Log       *logger.Logger
}

// Snapshot is a consistent copy of the controller state.
type Snapshot struct {
	Phase      Phase       `json:"phase"`
	Step       int         `json:"step"`
	TotalSteps int         `json:"total_steps"`
	AttemptID  *uuid.UUID  `json:"attempt_id,omitempty"`
	Answers    AnswerState `json:"answers"`
	CanAdvance bool        `json:"can_advance"`
	Busy       bool        `json:"busy"`
	Resumed    bool        `json:"resumed"`
	Warning    string      `json:"warning,omitempty"`
	Result     *Result     `json:"result,omitempty"`
}

// Controller is the step state machine for one owner's session. It is safe
// for concurrent use; at most one transition runs at a time and competing
// Next/Back calls fail with ErrTransitionInFlight.
type Controller struct {
	deps    ControllerDeps
	ownerID uuid.UUID
	log     *logger.Logger

	mu          sync.Mutex
	initialized bool
	busy        bool
	phase       Phase
	step        int
	attemptID   *uuid.UUID
	answers     AnswerState
	resumed     bool
	warning     string
	completion  *Completion
}

func NewController(ownerID uuid.UUID, deps ControllerDeps) *Controller {
	if deps.Catalog == nil {
		deps.Catalog = DefaultCatalog()
	}
	return &Controller{
		deps:    deps,
		ownerID: ownerID,
		log:     deps.Log.With("component", "StepController", "owner_id", ownerID.String()),
		phase:   PhaseResuming,
		answers: DefaultAnswers(deps.Catalog),
	}
}

// Initialize resolves the starting point exactly once. Later calls return
// the current snapshot without resolving again.
func (c *Controller) Initialize(ctx context.Context, forceFresh bool) (Snapshot, error) {
	c.mu.Lock()
	if c.initialized {
		defer c.mu.Unlock()
		if c.busy && c.phase == PhaseResuming {
			return c.snapshotLocked(), ErrTransitionInFlight
		}
		return c.snapshotLocked(), nil
	}
	c.initialized = true
	c.busy = true
	c.mu.Unlock()

	res, err := c.deps.Resolver.Resolve(ctx, c.ownerID, forceFresh)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	if err != nil {
		c.initialized = false
		return c.snapshotLocked(), err
	}
	c.phase = PhaseAnswering
	c.step = res.StartingStep
	c.attemptID = res.AttemptID
	c.answers = res.Answers.Clone()
	c.resumed = res.Resumed
	c.warning = res.Warning
	c.log.Debug("Session initialized", "step", c.step, "resumed", c.resumed, "persisted", c.attemptID != nil)
	return c.snapshotLocked(), nil
}

// Dispatch applies answer commands to the current state. The batch is
// rejected as a whole if any command is invalid.
func (c *Controller) Dispatch(cmds ...Command) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireAnsweringLocked(); err != nil {
		return c.snapshotLocked(), err
	}
	next, err := ApplyAll(c.deps.Catalog, c.answers, cmds)
	if err != nil {
		return c.snapshotLocked(), err
	}
	c.answers = next
	return c.snapshotLocked(), nil
}

// Next advances one step, saving the current step's slice first. On the
// final step it finalizes the attempt.
func (c *Controller) Next(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	if err := c.requireAnsweringLocked(); err != nil {
		defer c.mu.Unlock()
		return c.snapshotLocked(), err
	}
	if c.busy {
		defer c.mu.Unlock()
		return c.snapshotLocked(), ErrTransitionInFlight
	}
	if !CanAdvance(c.step, c.answers) {
		defer c.mu.Unlock()
		return c.snapshotLocked(), ErrStepIncomplete
	}
	step := c.step
	answers := c.answers.Clone()
	attemptID := c.attemptID
	c.busy = true
	if step == TotalSteps {
		c.phase = PhaseSubmitting
	}
	c.mu.Unlock()

	if step == TotalSteps {
		return c.finish(ctx, attemptID, answers)
	}

	c.saveSlice(ctx, attemptID, step, answers)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	c.step = step + 1
	return c.snapshotLocked(), nil
}

// Back moves one step backwards without touching saved slices. From step 1
// the session exits.
func (c *Controller) Back() (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireAnsweringLocked(); err != nil {
		return c.snapshotLocked(), err
	}
	if c.busy {
		return c.snapshotLocked(), ErrTransitionInFlight
	}
	if c.step <= 1 {
		c.phase = PhaseExited
		return c.snapshotLocked(), nil
	}
	c.step--
	return c.snapshotLocked(), nil
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) OwnerID() uuid.UUID { return c.ownerID }

// Terminal reports whether the session reached done or exited.
func (c *Controller) Terminal() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase == PhaseDone || c.phase == PhaseExited
}

func (c *Controller) finish(ctx context.Context, attemptID *uuid.UUID, answers AnswerState) (Snapshot, error) {
	completion, err := c.deps.Finalizer.Finalize(ctx, c.ownerID, attemptID, answers)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	if err != nil {
		c.phase = PhaseAnswering
		c.step = TotalSteps
		if !errors.Is(err, ErrCompletionNotSaved) {
			err = errors.Join(ErrCompletionNotSaved, err)
		}
		return c.snapshotLocked(), err
	}
	id := completion.AttemptID
	c.attemptID = &id
	c.completion = completion
	c.phase = PhaseDone
	c.log.Info("Questionnaire completed", "attempt_id", id.String(), "is_fallback", completion.Result.IsFallback)
	return c.snapshotLocked(), nil
}

// Intermediate saves never block advancing; failures only reduce what a
// later resume can restore.
func (c *Controller) saveSlice(ctx context.Context, attemptID *uuid.UUID, step int, answers AnswerState) {
	if attemptID == nil || c.deps.Store == nil {
		c.log.Warn("No persisted attempt; step answers not saved", "step", step)
		return
	}
	raw, err := SliceFor(step, answers)
	if err != nil {
		c.log.Error("Encode step slice failed", "step", step, "error", err)
		return
	}
	if _, err := c.deps.Store.UpdateAttempt(ctx, *attemptID, AttemptUpdate{Slices: Slices{step: raw}}); err != nil {
		c.log.Warn("Save step slice failed; resume may restart earlier", "attempt_id", attemptID.String(), "step", step, "error", err)
	}
}

func (c *Controller) requireAnsweringLocked() error {
	switch {
	case !c.initialized:
		return ErrNotInitialized
	case c.phase == PhaseResuming:
		return ErrTransitionInFlight
	case c.phase == PhaseSubmitting:
		return ErrTransitionInFlight
	case c.phase != PhaseAnswering:
		return ErrInvalidTransition
	}
	return nil
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		Phase:      c.phase,
		Step:       c.step,
		TotalSteps: TotalSteps,
		Answers:    c.answers.Clone(),
		Busy:       c.busy,
		Resumed:    c.resumed,
		Warning:    c.warning,
	}
	if c.attemptID != nil {
		id := *c.attemptID
		s.AttemptID = &id
	}
	if c.phase == PhaseAnswering {
		s.CanAdvance = !c.busy && CanAdvance(c.step, c.answers)
	}
	if c.completion != nil {
		s.Result = c.completion.Result.Clone()
	}
	return s
}
