package db

import (
	"fmt"

	types "github.com/yungbote/majorcompass-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.QuestionnaireAttempt{},
		&types.QuestionnaireRecommendation{},
	)
}

// EnsureQuestionnaireIndexes creates the partial unique index that allows a
// single incomplete attempt per user. The statement is valid on both
// Postgres and SQLite.
func EnsureQuestionnaireIndexes(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_questionnaire_attempt_open
		ON questionnaire_attempt(user_id)
		WHERE is_completed = false;
	`).Error; err != nil {
		return fmt.Errorf("create idx_questionnaire_attempt_open: %w", err)
	}
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_questionnaire_attempt_history
		ON questionnaire_attempt(user_id, completed_at DESC)
		WHERE is_completed = true;
	`).Error; err != nil {
		return fmt.Errorf("create idx_questionnaire_attempt_history: %w", err)
	}
	return nil
}

func Migrate(db *gorm.DB) error {
	if err := AutoMigrateAll(db); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return EnsureQuestionnaireIndexes(db)
}
