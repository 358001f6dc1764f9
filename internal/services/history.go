package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/majorcompass-backend/internal/data/repos"
	types "github.com/yungbote/majorcompass-backend/internal/domain"
	"github.com/yungbote/majorcompass-backend/internal/modules/questionnaire"
	"github.com/yungbote/majorcompass-backend/internal/platform/apierr"
	"github.com/yungbote/majorcompass-backend/internal/platform/ctxutil"
	"github.com/yungbote/majorcompass-backend/internal/platform/logger"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

type HistoryEntry struct {
	AttemptID   uuid.UUID                 `json:"attempt_id"`
	IsCompleted bool                      `json:"is_completed"`
	CompletedAt *time.Time                `json:"completed_at,omitempty"`
	CreatedAt   time.Time                 `json:"created_at"`
	UpdatedAt   time.Time                 `json:"updated_at"`
	Answers     questionnaire.AnswerState `json:"answers"`
	Result      *questionnaire.Result     `json:"result,omitempty"`
}

type HistoryPage struct {
	Items  []HistoryEntry `json:"items"`
	Total  int64          `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

type DataExport struct {
	OwnerID    uuid.UUID      `json:"owner_id"`
	ExportedAt time.Time      `json:"exported_at"`
	Attempts   []HistoryEntry `json:"attempts"`
}

type DeletionSummary struct {
	AttemptsDeleted        int64 `json:"attempts_deleted"`
	RecommendationsDeleted int64 `json:"recommendations_deleted"`
}

// SessionDropper forgets an owner's live questionnaire controller.
type SessionDropper interface {
	Drop(ownerID uuid.UUID)
}

type HistoryService interface {
	List(ctx context.Context, limit, offset int) (*HistoryPage, error)
	Get(ctx context.Context, attemptID uuid.UUID) (*HistoryEntry, error)
	Export(ctx context.Context) (*DataExport, error)
	DeleteData(ctx context.Context) (*DeletionSummary, error)
}

type historyService struct {
	db       *gorm.DB
	log      *logger.Logger
	attempts repos.AttemptRepo
	recs     repos.RecommendationRepo
	catalog  *questionnaire.Catalog
	sessions SessionDropper
	now      func() time.Time
}

func NewHistoryService(db *gorm.DB, log *logger.Logger, attempts repos.AttemptRepo, recs repos.RecommendationRepo, catalog *questionnaire.Catalog, sessions SessionDropper) HistoryService {
	if catalog == nil {
		catalog = questionnaire.DefaultCatalog()
	}
	return &historyService{
		db:       db,
		log:      log.With("service", "HistoryService"),
		attempts: attempts,
		recs:     recs,
		catalog:  catalog,
		sessions: sessions,
		now:      time.Now,
	}
}

func requireOwner(ctx context.Context) (uuid.UUID, error) {
	ownerID := ctxutil.OwnerID(ctx)
	if ownerID == uuid.Nil {
		return uuid.Nil, apierr.New(http.StatusUnauthorized, "unauthorized", questionnaire.ErrNoOwner)
	}
	return ownerID, nil
}

func (s *historyService) List(ctx context.Context, limit, offset int) (*HistoryPage, error) {
	ownerID, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}
	total, err := s.attempts.CountCompletedByUserID(ctx, nil, ownerID)
	if err != nil {
		return nil, fmt.Errorf("count history: %w", err)
	}
	rows, err := s.attempts.ListCompletedByUserID(ctx, nil, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	page := &HistoryPage{Items: make([]HistoryEntry, 0, len(rows)), Total: total, Limit: limit, Offset: offset}
	for _, row := range rows {
		page.Items = append(page.Items, s.entry(row))
	}
	return page, nil
}

func (s *historyService) Get(ctx context.Context, attemptID uuid.UUID) (*HistoryEntry, error) {
	ownerID, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	row, err := s.attempts.GetCompletedByUserAndID(ctx, nil, ownerID, attemptID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierr.New(http.StatusNotFound, "not_found", questionnaire.ErrAttemptNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get history entry: %w", err)
	}
	entry := s.entry(row)
	return &entry, nil
}

// Export returns every attempt the caller owns, completed or not.
func (s *historyService) Export(ctx context.Context) (*DataExport, error) {
	ownerID, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.attempts.ListByUserID(ctx, nil, ownerID)
	if err != nil {
		return nil, fmt.Errorf("export attempts: %w", err)
	}
	out := &DataExport{OwnerID: ownerID, ExportedAt: s.now().UTC(), Attempts: make([]HistoryEntry, 0, len(rows))}
	for _, row := range rows {
		out.Attempts = append(out.Attempts, s.entry(row))
	}
	return out, nil
}

// DeleteData removes every recommendation and attempt owned by the caller in
// one transaction, then drops the live controller.
func (s *historyService) DeleteData(ctx context.Context) (*DeletionSummary, error) {
	ownerID, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	summary := &DeletionSummary{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := s.recs.DeleteByUserID(ctx, tx, ownerID)
		if err != nil {
			return fmt.Errorf("delete recommendations: %w", err)
		}
		summary.RecommendationsDeleted = n
		n, err = s.attempts.DeleteByUserID(ctx, tx, ownerID)
		if err != nil {
			return fmt.Errorf("delete attempts: %w", err)
		}
		summary.AttemptsDeleted = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.sessions != nil {
		s.sessions.Drop(ownerID)
	}
	s.log.Info("Owner data deleted",
		"owner_id", ownerID.String(),
		"attempts", summary.AttemptsDeleted,
		"recommendations", summary.RecommendationsDeleted,
	)
	return summary, nil
}

func (s *historyService) entry(row *types.QuestionnaireAttempt) HistoryEntry {
	answers, _, err := questionnaire.Reconstruct(s.catalog, toAttempt(row).Slices)
	if err != nil {
		s.log.Warn("History attempt has undecodable answers", "attempt_id", row.ID.String(), "error", err)
	}
	e := HistoryEntry{
		AttemptID:   row.ID,
		IsCompleted: row.IsCompleted,
		CompletedAt: row.CompletedAt,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
		Answers:     answers,
	}
	if row.Recommendation != nil {
		e.Result = decodeResult(row.Recommendation)
	}
	return e
}

func decodeResult(rec *types.QuestionnaireRecommendation) *questionnaire.Result {
	var res questionnaire.Result
	if len(rec.Recommendations) > 0 {
		if err := json.Unmarshal(rec.Recommendations, &res); err != nil {
			return nil
		}
	}
	res.IsFallback = rec.IsFallback
	res.FailureReason = rec.FailureReason
	return &res
}
