package domain

import (
	"github.com/yungbote/majorcompass-backend/internal/domain/questionnaire"
)

type QuestionnaireAttempt = questionnaire.QuestionnaireAttempt
type QuestionnaireRecommendation = questionnaire.QuestionnaireRecommendation

var AttemptStepColumns = questionnaire.StepColumns
