package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/majorcompass-backend/internal/data/repos"
	types "github.com/yungbote/majorcompass-backend/internal/domain"
	"github.com/yungbote/majorcompass-backend/internal/modules/questionnaire"
	"github.com/yungbote/majorcompass-backend/internal/platform/logger"
)

type attemptStore struct {
	db       *gorm.DB
	log      *logger.Logger
	attempts repos.AttemptRepo
	recs     repos.RecommendationRepo
}

// NewAttemptStore adapts the gorm repos to the questionnaire persistence port.
func NewAttemptStore(db *gorm.DB, log *logger.Logger, attempts repos.AttemptRepo, recs repos.RecommendationRepo) questionnaire.AttemptStore {
	return &attemptStore{
		db:       db,
		log:      log.With("service", "AttemptStore"),
		attempts: attempts,
		recs:     recs,
	}
}

func (s *attemptStore) CreateAttempt(ctx context.Context, ownerID uuid.UUID) (*questionnaire.Attempt, error) {
	if ownerID == uuid.Nil {
		return nil, questionnaire.ErrNoOwner
	}
	row, err := s.attempts.Create(ctx, nil, &types.QuestionnaireAttempt{UserID: ownerID})
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return toAttempt(row), nil
}

func (s *attemptStore) UpdateAttempt(ctx context.Context, attemptID uuid.UUID, upd questionnaire.AttemptUpdate) (*questionnaire.Attempt, error) {
	updates := make(map[string]interface{}, len(upd.Slices)+2)
	for step, raw := range upd.Slices {
		if step < 1 || step >= len(types.AttemptStepColumns) {
			return nil, fmt.Errorf("update attempt: step %d out of range", step)
		}
		updates[types.AttemptStepColumns[step]] = datatypes.JSON(raw)
	}
	if upd.Complete {
		completedAt := upd.CompletedAt
		if completedAt.IsZero() {
			completedAt = time.Now()
		}
		updates["is_completed"] = true
		updates["completed_at"] = completedAt.UTC()
	}
	row, err := s.attempts.UpdateIncomplete(ctx, nil, attemptID, updates)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return toAttempt(row), nil
}

func (s *attemptStore) FindIncompleteAttempt(ctx context.Context, ownerID uuid.UUID) (*questionnaire.Attempt, error) {
	row, err := s.attempts.GetIncompleteByUserID(ctx, nil, ownerID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if row == nil {
		return nil, nil
	}
	return toAttempt(row), nil
}

func (s *attemptStore) DeleteAttempt(ctx context.Context, attemptID uuid.UUID) error {
	return mapStoreErr(s.attempts.DeleteIncompleteByID(ctx, nil, attemptID))
}

func (s *attemptStore) InsertRecommendation(ctx context.Context, attemptID, ownerID uuid.UUID, res *questionnaire.Result) error {
	if res == nil {
		return fmt.Errorf("insert recommendation: nil result")
	}
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode recommendation: %w", err)
	}
	_, err = s.recs.Create(ctx, nil, &types.QuestionnaireRecommendation{
		UserID:          ownerID,
		AttemptID:       attemptID,
		Recommendations: datatypes.JSON(payload),
		IsFallback:      res.IsFallback,
		FailureReason:   res.FailureReason,
	})
	return mapStoreErr(err)
}

func mapStoreErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", questionnaire.ErrAttemptConflict, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return questionnaire.ErrAttemptNotFound
	default:
		return err
	}
}

func toAttempt(row *types.QuestionnaireAttempt) *questionnaire.Attempt {
	if row == nil {
		return nil
	}
	slices := make(questionnaire.Slices, questionnaire.TotalSteps)
	for step := 1; step <= questionnaire.TotalSteps; step++ {
		if v := row.StepValue(step); len(v) > 0 {
			slices[step] = json.RawMessage(v)
		}
	}
	return &questionnaire.Attempt{
		ID:          row.ID,
		OwnerID:     row.UserID,
		Slices:      slices,
		IsCompleted: row.IsCompleted,
		CompletedAt: row.CompletedAt,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}
