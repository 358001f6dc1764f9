package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/majorcompass-backend/internal/data/repos/testutil"
	"github.com/yungbote/majorcompass-backend/internal/platform/apierr"
)

type dropRecorder struct{ dropped []uuid.UUID }

func (d *dropRecorder) Drop(ownerID uuid.UUID) { d.dropped = append(d.dropped, ownerID) }

func TestHistoryListGetExport(t *testing.T) {
	f := newFixture(t)
	ownerID := uuid.New()
	ctx := ownerCtx(ownerID)
	bg := context.Background()

	older := testutil.SeedAttempt(t, bg, f.db, ownerID, true)
	testutil.SeedRecommendation(t, bg, f.db, ownerID, older.ID)
	time.Sleep(10 * time.Millisecond)
	newer := testutil.SeedAttempt(t, bg, f.db, ownerID, true)
	open := testutil.SeedAttempt(t, bg, f.db, ownerID, false)
	testutil.SeedAttempt(t, bg, f.db, uuid.New(), true)

	svc := NewHistoryService(f.db, f.log, f.attempts, f.recs, nil, nil)

	page, err := svc.List(ctx, 0, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 2 || len(page.Items) != 2 || page.Limit != DefaultHistoryLimit {
		t.Fatalf("page=%+v", page)
	}
	if page.Items[0].AttemptID != newer.ID || page.Items[1].AttemptID != older.ID {
		t.Fatalf("history not newest first: %v, %v", page.Items[0].AttemptID, page.Items[1].AttemptID)
	}
	if page.Items[1].Result == nil || page.Items[1].Result.Recommendations[0].Major != "Physics" {
		t.Fatalf("older entry result=%+v", page.Items[1].Result)
	}
	if page.Items[0].Answers.WorkStyle != "mix" || page.Items[0].Answers.SkillsConfidence["leadership"] != 4 {
		t.Fatalf("answers not reconstructed: %+v", page.Items[0].Answers)
	}

	if _, err := svc.Get(ctx, open.ID); err == nil {
		t.Fatalf("Get on incomplete attempt should fail")
	} else if status, code := apierr.From(err); status != http.StatusNotFound || code != "not_found" {
		t.Fatalf("Get incomplete: %d/%s", status, code)
	}
	entry, err := svc.Get(ctx, older.ID)
	if err != nil || entry.AttemptID != older.ID {
		t.Fatalf("Get: %+v err=%v", entry, err)
	}

	export, err := svc.Export(ctx)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if export.OwnerID != ownerID || len(export.Attempts) != 3 || export.ExportedAt.IsZero() {
		t.Fatalf("export=%+v", export)
	}
}

func TestHistoryDeleteData(t *testing.T) {
	f := newFixture(t)
	ownerID := uuid.New()
	otherID := uuid.New()
	bg := context.Background()

	a := testutil.SeedAttempt(t, bg, f.db, ownerID, true)
	testutil.SeedRecommendation(t, bg, f.db, ownerID, a.ID)
	testutil.SeedAttempt(t, bg, f.db, ownerID, false)
	testutil.SeedAttempt(t, bg, f.db, otherID, false)

	drops := &dropRecorder{}
	svc := NewHistoryService(f.db, f.log, f.attempts, f.recs, nil, drops)

	summary, err := svc.DeleteData(ownerCtx(ownerID))
	if err != nil {
		t.Fatalf("DeleteData: %v", err)
	}
	if summary.AttemptsDeleted != 2 || summary.RecommendationsDeleted != 1 {
		t.Fatalf("summary=%+v", summary)
	}
	if len(drops.dropped) != 1 || drops.dropped[0] != ownerID {
		t.Fatalf("controller not dropped: %v", drops.dropped)
	}
	if rows, _ := f.attempts.ListByUserID(bg, nil, ownerID); len(rows) != 0 {
		t.Fatalf("attempts left: %d", len(rows))
	}
	if rows, _ := f.attempts.ListByUserID(bg, nil, otherID); len(rows) != 1 {
		t.Fatalf("other owner's data touched: %d", len(rows))
	}
}

func TestHistoryRequiresOwner(t *testing.T) {
	f := newFixture(t)
	svc := NewHistoryService(f.db, f.log, f.attempts, f.recs, nil, nil)
	_, err := svc.List(context.Background(), 10, 0)
	if status, _ := apierr.From(err); status != http.StatusUnauthorized {
		t.Fatalf("want 401 got %d (%v)", status, err)
	}
}
