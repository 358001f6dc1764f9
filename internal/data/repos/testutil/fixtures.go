package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/majorcompass-backend/internal/domain"
)

func SeedAttempt(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, completed bool) *types.QuestionnaireAttempt {
	tb.Helper()
	now := time.Now().UTC()
	a := &types.QuestionnaireAttempt{
		ID:                 uuid.New(),
		UserID:             userID,
		Question1Interests: datatypes.JSON([]byte(`["math"]`)),
		IsCompleted:        completed,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if completed {
		a.Question2WorkStyle = datatypes.JSON([]byte(`"mix"`))
		a.Question3Skills = datatypes.JSON([]byte(`{"leadership":[4]}`))
		a.Question4Values = datatypes.JSON([]byte(`["high-salary","job-security"]`))
		a.Question5AcademicStrengths = datatypes.JSON([]byte(`["mathematics"]`))
		a.CompletedAt = PtrTime(now)
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed attempt: %v", err)
	}
	return a
}

func SeedRecommendation(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, attemptID uuid.UUID) *types.QuestionnaireRecommendation {
	tb.Helper()
	r := &types.QuestionnaireRecommendation{
		ID:              uuid.New(),
		UserID:          userID,
		AttemptID:       attemptID,
		Recommendations: datatypes.JSON([]byte(`{"recommendations":[{"major":"Physics","confidence_score":88}]}`)),
		CreatedAt:       time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed recommendation: %v", err)
	}
	return r
}

func PtrTime(v time.Time) *time.Time { return &v }
