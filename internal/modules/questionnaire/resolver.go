package questionnaire

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/majorcompass-backend/internal/platform/logger"
)

const (
	DefaultStaleAfter = 24 * time.Hour

	// WarningProgressUnavailable is surfaced when saved progress could not be
	// loaded or a new attempt could not be created.
	WarningProgressUnavailable = "We couldn't load your saved progress. You can continue, but your answers may not be saved."
)

// Resolution is where a session starts. AttemptID is nil when the store
// was unreachable and the session runs without persistence.
type Resolution struct {
	AttemptID    *uuid.UUID
	StartingStep int
	Answers      AnswerState
	Resumed      bool
	Warning      string
}

type ResolverOptions struct {
	// StaleAfter is how long an incomplete attempt without any answers is
	// reused before it is replaced by a new one. Reuse keeps repeated
	// resolution idempotent: reloading or a second tab lands on the same
	// attempt id and step instead of churning rows.
	StaleAfter time.Duration
	Now        func() time.Time
}

type Resolver struct {
	store      AttemptStore
	catalog    *Catalog
	log        *logger.Logger
	staleAfter time.Duration
	now        func() time.Time
}

func NewResolver(store AttemptStore, catalog *Catalog, log *logger.Logger, opts ResolverOptions) *Resolver {
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = DefaultStaleAfter
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Resolver{
		store:      store,
		catalog:    catalog,
		log:        log.With("component", "SessionResolver"),
		staleAfter: opts.StaleAfter,
		now:        opts.Now,
	}
}

// Resolve decides which attempt the owner continues and where. Store
// failures never surface as errors; they produce a step-1 resolution
// without an attempt id and a warning. Completed attempts are never
// modified.
func (r *Resolver) Resolve(ctx context.Context, ownerID uuid.UUID, forceFresh bool) (Resolution, error) {
	if ownerID == uuid.Nil {
		return Resolution{}, ErrNoOwner
	}
	log := r.log.With("owner_id", ownerID.String(), "force_fresh", forceFresh)

	existing, err := r.store.FindIncompleteAttempt(ctx, ownerID)
	if err != nil {
		log.Warn("Find incomplete attempt failed; continuing without saved progress", "error", err)
		return r.failOpen(), nil
	}

	if forceFresh {
		if existing != nil {
			if err := r.store.DeleteAttempt(ctx, existing.ID); err != nil {
				log.Warn("Delete abandoned attempt failed", "attempt_id", existing.ID.String(), "error", err)
				return r.failOpen(), nil
			}
			log.Info("Discarded incomplete attempt for retake", "attempt_id", existing.ID.String())
		}
		return r.create(ctx, ownerID, log)
	}

	if existing == nil {
		return r.create(ctx, ownerID, log)
	}
	if existing.Slices.AllEmpty() {
		if r.now().Sub(existing.UpdatedAt) < r.staleAfter {
			return r.fresh(existing.ID), nil
		}
		if err := r.store.DeleteAttempt(ctx, existing.ID); err != nil {
			log.Warn("Delete stale empty attempt failed", "attempt_id", existing.ID.String(), "error", err)
			return r.failOpen(), nil
		}
		log.Info("Replaced stale empty attempt", "attempt_id", existing.ID.String())
		return r.create(ctx, ownerID, log)
	}
	return r.resume(existing, log), nil
}

func (r *Resolver) create(ctx context.Context, ownerID uuid.UUID, log *logger.Logger) (Resolution, error) {
	created, err := r.store.CreateAttempt(ctx, ownerID)
	if err == nil {
		log.Info("Created attempt", "attempt_id", created.ID.String())
		return r.fresh(created.ID), nil
	}
	if !errors.Is(err, ErrAttemptConflict) {
		log.Warn("Create attempt failed; continuing without saved progress", "error", err)
		return r.failOpen(), nil
	}

	// Another resolution created the attempt between our query and insert.
	winner, ferr := r.store.FindIncompleteAttempt(ctx, ownerID)
	if ferr != nil || winner == nil {
		log.Warn("Attempt conflict could not be resolved", "error", errors.Join(err, ferr))
		return r.failOpen(), nil
	}
	log.Info("Attempt conflict; continuing concurrent attempt", "attempt_id", winner.ID.String())
	if winner.Slices.AllEmpty() {
		return r.fresh(winner.ID), nil
	}
	return r.resume(winner, log), nil
}

func (r *Resolver) resume(a *Attempt, log *logger.Logger) Resolution {
	answers, step, err := Reconstruct(r.catalog, a.Slices)
	if err != nil {
		log.Warn("Saved slice could not be decoded; resuming before it", "attempt_id", a.ID.String(), "step", step, "error", err)
	}
	id := a.ID
	return Resolution{
		AttemptID:    &id,
		StartingStep: step,
		Answers:      answers,
		Resumed:      true,
	}
}

func (r *Resolver) fresh(id uuid.UUID) Resolution {
	return Resolution{
		AttemptID:    &id,
		StartingStep: 1,
		Answers:      DefaultAnswers(r.catalog),
	}
}

func (r *Resolver) failOpen() Resolution {
	return Resolution{
		StartingStep: 1,
		Answers:      DefaultAnswers(r.catalog),
		Warning:      WarningProgressUnavailable,
	}
}
