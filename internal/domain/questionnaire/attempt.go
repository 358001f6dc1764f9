package questionnaire

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// QuestionnaireAttempt stores one answer column per step. At most one row
// per user may have is_completed = false (see idx_questionnaire_attempt_open).
type QuestionnaireAttempt struct {
	ID                         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID                     uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Question1Interests         datatypes.JSON `gorm:"column:question_1_interests" json:"question_1_interests"`
	Question2WorkStyle         datatypes.JSON `gorm:"column:question_2_work_style" json:"question_2_work_style"`
	Question3Skills            datatypes.JSON `gorm:"column:question_3_skills" json:"question_3_skills"`
	Question4Values            datatypes.JSON `gorm:"column:question_4_values" json:"question_4_values"`
	Question5AcademicStrengths datatypes.JSON `gorm:"column:question_5_academic_strengths" json:"question_5_academic_strengths"`
	IsCompleted                bool           `gorm:"column:is_completed;not null;default:false;index" json:"is_completed"`
	CompletedAt                *time.Time     `gorm:"column:completed_at;index" json:"completed_at,omitempty"`
	CreatedAt                  time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt                  time.Time      `gorm:"not null" json:"updated_at"`

	Recommendation *QuestionnaireRecommendation `gorm:"foreignKey:AttemptID;references:ID" json:"recommendation,omitempty"`
}

func (QuestionnaireAttempt) TableName() string { return "questionnaire_attempt" }

// StepColumns names the answer column for each step, in step order.
var StepColumns = [...]string{
	1: "question_1_interests",
	2: "question_2_work_style",
	3: "question_3_skills",
	4: "question_4_values",
	5: "question_5_academic_strengths",
}

// StepValue returns the stored payload for step (1-based).
func (a *QuestionnaireAttempt) StepValue(step int) datatypes.JSON {
	switch step {
	case 1:
		return a.Question1Interests
	case 2:
		return a.Question2WorkStyle
	case 3:
		return a.Question3Skills
	case 4:
		return a.Question4Values
	case 5:
		return a.Question5AcademicStrengths
	default:
		return nil
	}
}
