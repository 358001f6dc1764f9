package questionnaire

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type QuestionnaireRecommendation struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	AttemptID       uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"attempt_id"`
	Recommendations datatypes.JSON `gorm:"column:recommendations;not null" json:"recommendations"`
	IsFallback      bool           `gorm:"column:is_fallback;not null;default:false" json:"is_fallback"`
	FailureReason   string         `gorm:"column:failure_reason" json:"failure_reason,omitempty"`
	CreatedAt       time.Time      `gorm:"not null" json:"created_at"`
}

func (QuestionnaireRecommendation) TableName() string { return "questionnaire_recommendation" }
