package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/majorcompass-backend/internal/data/repos"
	"github.com/yungbote/majorcompass-backend/internal/platform/logger"
)

type Repos struct {
	Attempt        repos.AttemptRepo
	Recommendation repos.RecommendationRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Attempt:        repos.NewAttemptRepo(db, log),
		Recommendation: repos.NewRecommendationRepo(db, log),
	}
}
