package questionnaire

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/majorcompass-backend/internal/domain"
	"github.com/yungbote/majorcompass-backend/internal/platform/logger"
)

type RecommendationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rec *types.QuestionnaireRecommendation) (*types.QuestionnaireRecommendation, error)
	GetByAttemptID(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID) (*types.QuestionnaireRecommendation, error)
	ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.QuestionnaireRecommendation, error)
	DeleteByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
}

type recommendationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecommendationRepo(db *gorm.DB, baseLog *logger.Logger) RecommendationRepo {
	repoLog := baseLog.With("repo", "QuestionnaireRecommendationRepo")
	return &recommendationRepo{db: db, log: repoLog}
}

// Create stores the result for an attempt. Each attempt has at most one
// recommendation row.
func (r *recommendationRepo) Create(ctx context.Context, tx *gorm.DB, rec *types.QuestionnaireRecommendation) (*types.QuestionnaireRecommendation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *recommendationRepo) GetByAttemptID(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID) (*types.QuestionnaireRecommendation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.QuestionnaireRecommendation
	if err := transaction.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *recommendationRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.QuestionnaireRecommendation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.QuestionnaireRecommendation
	if userID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *recommendationRepo) DeleteByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil {
		return 0, nil
	}
	res := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&types.QuestionnaireRecommendation{})
	return res.RowsAffected, res.Error
}
