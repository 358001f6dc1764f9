package questionnaire

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Attempt is one persisted questionnaire session.
type Attempt struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Slices      Slices
	IsCompleted bool
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AttemptUpdate carries partial slices, and optionally the completion fields.
// Steps absent from Slices are left untouched.
type AttemptUpdate struct {
	Slices      Slices
	Complete    bool
	CompletedAt time.Time
}

// AttemptStore is the progress persistence port. Every call may fail.
//
// CreateAttempt returns ErrAttemptConflict when the owner already has an
// incomplete attempt. UpdateAttempt returns ErrAttemptNotFound when the
// attempt does not exist or is already completed. FindIncompleteAttempt
// returns (nil, nil) when there is none.
type AttemptStore interface {
	CreateAttempt(ctx context.Context, ownerID uuid.UUID) (*Attempt, error)
	UpdateAttempt(ctx context.Context, attemptID uuid.UUID, upd AttemptUpdate) (*Attempt, error)
	FindIncompleteAttempt(ctx context.Context, ownerID uuid.UUID) (*Attempt, error)
	DeleteAttempt(ctx context.Context, attemptID uuid.UUID) error
	InsertRecommendation(ctx context.Context, attemptID, ownerID uuid.UUID, res *Result) error
}
