package questionnaire

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/majorcompass-backend/internal/data/repos/testutil"
	types "github.com/yungbote/majorcompass-backend/internal/domain"
)

func TestAttemptRepoLifecycle(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewAttemptRepo(db, testutil.Logger(t))
	userID := uuid.New()

	if got, err := repo.GetIncompleteByUserID(ctx, nil, userID); err != nil || got != nil {
		t.Fatalf("GetIncompleteByUserID empty: got=%v err=%v", got, err)
	}

	a, err := repo.Create(ctx, nil, &types.QuestionnaireAttempt{UserID: userID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.ID == uuid.Nil {
		t.Fatalf("Create: expected id to be assigned")
	}

	got, err := repo.GetIncompleteByUserID(ctx, nil, userID)
	if err != nil || got == nil || got.ID != a.ID {
		t.Fatalf("GetIncompleteByUserID: got=%v err=%v", got, err)
	}

	updated, err := repo.UpdateIncomplete(ctx, nil, a.ID, map[string]interface{}{
		"question_1_interests": datatypes.JSON([]byte(`["math","arts"]`)),
	})
	if err != nil {
		t.Fatalf("UpdateIncomplete: %v", err)
	}
	if string(updated.Question1Interests) != `["math","arts"]` {
		t.Fatalf("UpdateIncomplete: question_1_interests=%s", updated.Question1Interests)
	}

	now := time.Now().UTC()
	if _, err := repo.UpdateIncomplete(ctx, nil, a.ID, map[string]interface{}{
		"is_completed": true,
		"completed_at": now,
	}); err != nil {
		t.Fatalf("UpdateIncomplete complete: %v", err)
	}
	if _, err := repo.UpdateIncomplete(ctx, nil, a.ID, map[string]interface{}{
		"question_1_interests": datatypes.JSON([]byte(`[]`)),
	}); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("UpdateIncomplete on completed: expected ErrRecordNotFound, got %v", err)
	}

	// Completed attempts survive DeleteIncompleteByID.
	if err := repo.DeleteIncompleteByID(ctx, nil, a.ID); err != nil {
		t.Fatalf("DeleteIncompleteByID: %v", err)
	}
	if _, err := repo.GetByID(ctx, nil, a.ID); err != nil {
		t.Fatalf("GetByID after delete of completed: %v", err)
	}
}

func TestAttemptRepoSingleOpenAttempt(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewAttemptRepo(db, testutil.Logger(t))
	userID := uuid.New()

	if _, err := repo.Create(ctx, nil, &types.QuestionnaireAttempt{UserID: userID}); err != nil {
		t.Fatalf("Create first: %v", err)
	}
	_, err := repo.Create(ctx, nil, &types.QuestionnaireAttempt{UserID: userID})
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("Create second: expected ErrDuplicatedKey, got %v", err)
	}

	// Completed attempts do not count against the open slot.
	testutil.SeedAttempt(t, ctx, db, userID, true)
	testutil.SeedAttempt(t, ctx, db, userID, true)
	other := uuid.New()
	if _, err := repo.Create(ctx, nil, &types.QuestionnaireAttempt{UserID: other}); err != nil {
		t.Fatalf("Create other user: %v", err)
	}
}

func TestAttemptRepoHistory(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewAttemptRepo(db, testutil.Logger(t))
	userID := uuid.New()

	older := testutil.SeedAttempt(t, ctx, db, userID, true)
	if err := db.Model(older).Update("completed_at", time.Now().UTC().Add(-time.Hour)).Error; err != nil {
		t.Fatalf("age attempt: %v", err)
	}
	newer := testutil.SeedAttempt(t, ctx, db, userID, true)
	testutil.SeedRecommendation(t, ctx, db, userID, newer.ID)
	testutil.SeedAttempt(t, ctx, db, userID, false)
	testutil.SeedAttempt(t, ctx, db, uuid.New(), true)

	rows, err := repo.ListCompletedByUserID(ctx, nil, userID, 10, 0)
	if err != nil || len(rows) != 2 {
		t.Fatalf("ListCompletedByUserID: err=%v len=%d", err, len(rows))
	}
	if rows[0].ID != newer.ID || rows[1].ID != older.ID {
		t.Fatalf("ListCompletedByUserID: expected newest first")
	}
	if rows[0].Recommendation == nil || rows[1].Recommendation != nil {
		t.Fatalf("ListCompletedByUserID: recommendation preload mismatch")
	}

	if rows, err := repo.ListCompletedByUserID(ctx, nil, userID, 1, 1); err != nil || len(rows) != 1 || rows[0].ID != older.ID {
		t.Fatalf("ListCompletedByUserID paged: err=%v len=%d", err, len(rows))
	}
	if n, err := repo.CountCompletedByUserID(ctx, nil, userID); err != nil || n != 2 {
		t.Fatalf("CountCompletedByUserID: n=%d err=%v", n, err)
	}
	if _, err := repo.GetCompletedByUserAndID(ctx, nil, uuid.New(), newer.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("GetCompletedByUserAndID other user: expected not found, got %v", err)
	}
	if all, err := repo.ListByUserID(ctx, nil, userID); err != nil || len(all) != 3 {
		t.Fatalf("ListByUserID: err=%v len=%d", err, len(all))
	}
	if n, err := repo.DeleteByUserID(ctx, nil, userID); err != nil || n != 3 {
		t.Fatalf("DeleteByUserID: n=%d err=%v", n, err)
	}
}
