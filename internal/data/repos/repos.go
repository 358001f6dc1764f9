package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/majorcompass-backend/internal/data/repos/questionnaire"
	"github.com/yungbote/majorcompass-backend/internal/platform/logger"
)

type AttemptRepo = questionnaire.AttemptRepo
type RecommendationRepo = questionnaire.RecommendationRepo

func NewAttemptRepo(db *gorm.DB, baseLog *logger.Logger) AttemptRepo {
	return questionnaire.NewAttemptRepo(db, baseLog)
}

func NewRecommendationRepo(db *gorm.DB, baseLog *logger.Logger) RecommendationRepo {
	return questionnaire.NewRecommendationRepo(db, baseLog)
}
