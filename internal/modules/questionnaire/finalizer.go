package questionnaire

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/majorcompass-backend/internal/platform/logger"
)

// Completion is the outcome of a successful finalization.
type Completion struct {
	AttemptID   uuid.UUID
	CompletedAt time.Time
	Result      *Result
	ResultSaved bool
}

type Finalizer struct {
	store     AttemptStore
	generator *Generator
	log       *logger.Logger
	now       func() time.Time
}

func NewFinalizer(store AttemptStore, generator *Generator, log *logger.Logger) *Finalizer {
	return &Finalizer{
		store:     store,
		generator: generator,
		log:       log.With("component", "CompletionFinalizer"),
		now:       time.Now,
	}
}

// Finalize writes every slice and the completion flag, generates the
// recommendations, then saves them best-effort. A failed completion write
// aborts with ErrCompletionNotSaved. With a nil attemptID the attempt is
// created first; if the given attempt no longer exists the owner's open
// attempt is found or created and completed in its place.
func (f *Finalizer) Finalize(ctx context.Context, ownerID uuid.UUID, attemptID *uuid.UUID, answers AnswerState) (*Completion, error) {
	if ownerID == uuid.Nil {
		return nil, ErrNoOwner
	}
	all, err := AllSlices(answers)
	if err != nil {
		return nil, errors.Join(ErrCompletionNotSaved, err)
	}

	id, err := f.ensureAttempt(ctx, ownerID, attemptID)
	if err != nil {
		f.log.Error("Completion write failed", "owner_id", ownerID.String(), "error", err)
		return nil, errors.Join(ErrCompletionNotSaved, err)
	}

	completedAt := f.now().UTC()
	upd := AttemptUpdate{Slices: all, Complete: true, CompletedAt: completedAt}
	_, err = f.store.UpdateAttempt(ctx, id, upd)
	if errors.Is(err, ErrAttemptNotFound) {
		// The attempt was discarded under us, e.g. by a retake in another
		// tab. Complete the owner's open attempt instead.
		stale := id
		if id, err = f.ensureAttempt(ctx, ownerID, nil); err == nil {
			f.log.Warn("Attempt vanished before completion; completing open attempt", "stale_attempt_id", stale.String(), "attempt_id", id.String())
			_, err = f.store.UpdateAttempt(ctx, id, upd)
		}
	}
	if err != nil {
		f.log.Error("Completion write failed", "attempt_id", id.String(), "error", err)
		return nil, errors.Join(ErrCompletionNotSaved, err)
	}

	// The attempt is complete from here on; losing the caller must not
	// lose the result.
	detached := context.WithoutCancel(ctx)
	res := f.generator.Generate(detached, answers)

	saved := true
	if err := f.store.InsertRecommendation(detached, id, ownerID, res); err != nil {
		saved = false
		f.log.Warn("Saving recommendation failed", "attempt_id", id.String(), "is_fallback", res.IsFallback, "error", err)
	}

	return &Completion{
		AttemptID:   id,
		CompletedAt: completedAt,
		Result:      res,
		ResultSaved: saved,
	}, nil
}

func (f *Finalizer) ensureAttempt(ctx context.Context, ownerID uuid.UUID, attemptID *uuid.UUID) (uuid.UUID, error) {
	if attemptID != nil && *attemptID != uuid.Nil {
		return *attemptID, nil
	}
	created, err := f.store.CreateAttempt(ctx, ownerID)
	if err == nil {
		return created.ID, nil
	}
	if !errors.Is(err, ErrAttemptConflict) {
		return uuid.Nil, fmt.Errorf("create attempt: %w", err)
	}
	existing, ferr := f.store.FindIncompleteAttempt(ctx, ownerID)
	if ferr != nil {
		return uuid.Nil, fmt.Errorf("find incomplete attempt: %w", ferr)
	}
	if existing == nil {
		return uuid.Nil, err
	}
	return existing.ID, nil
}
