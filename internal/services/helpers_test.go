package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/majorcompass-backend/internal/data/repos"
	"github.com/yungbote/majorcompass-backend/internal/data/repos/testutil"
	"github.com/yungbote/majorcompass-backend/internal/modules/questionnaire"
	"github.com/yungbote/majorcompass-backend/internal/platform/ctxutil"
	"github.com/yungbote/majorcompass-backend/internal/platform/logger"
)

type fixture struct {
	db       *gorm.DB
	log      *logger.Logger
	attempts repos.AttemptRepo
	recs     repos.RecommendationRepo
	store    questionnaire.AttemptStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	attempts := repos.NewAttemptRepo(db, log)
	recs := repos.NewRecommendationRepo(db, log)
	return &fixture{
		db:       db,
		log:      log,
		attempts: attempts,
		recs:     recs,
		store:    NewAttemptStore(db, log, attempts, recs),
	}
}

func (f *fixture) controllerDeps(scorer questionnaire.Scorer) questionnaire.ControllerDeps {
	cat := questionnaire.DefaultCatalog()
	gen := questionnaire.NewGenerator(scorer, 2*time.Second, f.log)
	return questionnaire.ControllerDeps{
		Catalog:   cat,
		Resolver:  questionnaire.NewResolver(f.store, cat, f.log, questionnaire.ResolverOptions{}),
		Store:     f.store,
		Finalizer: questionnaire.NewFinalizer(f.store, gen, f.log),
		Log:       f.log,
	}
}

func ownerCtx(ownerID uuid.UUID) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{OwnerID: ownerID})
}

type scorerFunc func(ctx context.Context, a questionnaire.AnswerState) (*questionnaire.Result, error)

func (f scorerFunc) Score(ctx context.Context, a questionnaire.AnswerState) (*questionnaire.Result, error) {
	return f(ctx, a)
}

func staticScorer(major string) questionnaire.Scorer {
	return scorerFunc(func(context.Context, questionnaire.AnswerState) (*questionnaire.Result, error) {
		return &questionnaire.Result{
			Recommendations: []questionnaire.Recommendation{{Major: major, ConfidenceScore: 90, Reasoning: "fits"}},
			Summary:         "summary",
		}, nil
	})
}

// completeAnswers drives every step to a state that can advance.
var completeAnswers = []questionnaire.Command{
	{Type: questionnaire.CmdToggleInterest, ID: "math"},
	{Type: questionnaire.CmdSetWorkStyle, ID: "mix"},
	{Type: questionnaire.CmdSetSkillConfidence, Skill: "leadership", Value: 5},
	{Type: questionnaire.CmdToggleCareerValue, ID: "high-salary"},
	{Type: questionnaire.CmdToggleCareerValue, ID: "job-security"},
	{Type: questionnaire.CmdToggleAcademicStrength, ID: "mathematics"},
}

func ctxOwner(ctx context.Context) uuid.UUID { return ctxutil.OwnerID(ctx) }
