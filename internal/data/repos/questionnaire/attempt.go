package questionnaire

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/majorcompass-backend/internal/domain"
	"github.com/yungbote/majorcompass-backend/internal/platform/logger"
)

type AttemptRepo interface {
	Create(ctx context.Context, tx *gorm.DB, attempt *types.QuestionnaireAttempt) (*types.QuestionnaireAttempt, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.QuestionnaireAttempt, error)
	GetIncompleteByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.QuestionnaireAttempt, error)
	UpdateIncomplete(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) (*types.QuestionnaireAttempt, error)
	DeleteIncompleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	ListCompletedByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit, offset int) ([]*types.QuestionnaireAttempt, error)
	CountCompletedByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
	GetCompletedByUserAndID(ctx context.Context, tx *gorm.DB, userID, id uuid.UUID) (*types.QuestionnaireAttempt, error)
	ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.QuestionnaireAttempt, error)
	DeleteByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
}

type attemptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAttemptRepo(db *gorm.DB, baseLog *logger.Logger) AttemptRepo {
	repoLog := baseLog.With("repo", "QuestionnaireAttemptRepo")
	return &attemptRepo{db: db, log: repoLog}
}

// Create inserts attempt. A second incomplete attempt for the same user is
// rejected by idx_questionnaire_attempt_open with gorm.ErrDuplicatedKey.
func (r *attemptRepo) Create(ctx context.Context, tx *gorm.DB, attempt *types.QuestionnaireAttempt) (*types.QuestionnaireAttempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if attempt.ID == uuid.Nil {
		attempt.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).Create(attempt).Error; err != nil {
		return nil, err
	}
	return attempt, nil
}

func (r *attemptRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.QuestionnaireAttempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.QuestionnaireAttempt
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// GetIncompleteByUserID returns (nil, nil) when the user has no open attempt.
func (r *attemptRepo) GetIncompleteByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.QuestionnaireAttempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil {
		return nil, nil
	}
	var out types.QuestionnaireAttempt
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND is_completed = ?", userID, false).
		Order("created_at DESC").
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateIncomplete applies column updates to an attempt that is still open.
// Completed attempts are immutable; updating one returns gorm.ErrRecordNotFound.
func (r *attemptRepo) UpdateIncomplete(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) (*types.QuestionnaireAttempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["updated_at"] = time.Now().UTC()
	res := transaction.WithContext(ctx).
		Model(&types.QuestionnaireAttempt{}).
		Where("id = ? AND is_completed = ?", id, false).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetByID(ctx, transaction, id)
}

func (r *attemptRepo) DeleteIncompleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("id = ? AND is_completed = ?", id, false).
		Delete(&types.QuestionnaireAttempt{}).Error
}

func (r *attemptRepo) ListCompletedByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit, offset int) ([]*types.QuestionnaireAttempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.QuestionnaireAttempt
	if userID == uuid.Nil {
		return results, nil
	}
	q := transaction.WithContext(ctx).
		Preload("Recommendation").
		Where("user_id = ? AND is_completed = ?", userID, true).
		Order("completed_at DESC").
		Order("id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *attemptRepo) CountCompletedByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	if err := transaction.WithContext(ctx).
		Model(&types.QuestionnaireAttempt{}).
		Where("user_id = ? AND is_completed = ?", userID, true).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *attemptRepo) GetCompletedByUserAndID(ctx context.Context, tx *gorm.DB, userID, id uuid.UUID) (*types.QuestionnaireAttempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.QuestionnaireAttempt
	if err := transaction.WithContext(ctx).
		Preload("Recommendation").
		Where("id = ? AND user_id = ? AND is_completed = ?", id, userID, true).
		First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *attemptRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.QuestionnaireAttempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.QuestionnaireAttempt
	if userID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Preload("Recommendation").
		Where("user_id = ?", userID).
		Order("created_at").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *attemptRepo) DeleteByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil {
		return 0, nil
	}
	res := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&types.QuestionnaireAttempt{})
	return res.RowsAffected, res.Error
}
