package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/majorcompass-backend/internal/modules/questionnaire"
	"github.com/yungbote/majorcompass-backend/internal/platform/logger"
	"github.com/yungbote/majorcompass-backend/internal/services"
)

type Services struct {
	Catalog        *questionnaire.Catalog
	Store          questionnaire.AttemptStore
	ControllerDeps questionnaire.ControllerDeps

	Questionnaire services.QuestionnaireService
	History       services.HistoryService
	Identity      services.IdentityService
}

// wireQuestionnaire builds the controller dependencies shared by the HTTP
// session service and the terminal questionnaire.
func wireQuestionnaire(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients) Services {
	log.Info("Wiring questionnaire...")
	catalog := questionnaire.DefaultCatalog()
	store := services.NewAttemptStore(db, log, repos.Attempt, repos.Recommendation)

	scorer := services.NewUnavailableScorer()
	if clients.LLM != nil {
		scorer = services.NewLLMScorer(log, clients.LLMProvider, clients.LLM, catalog)
	}
	generator := questionnaire.NewGenerator(scorer, cfg.RecommendationTimeout, log)

	return Services{
		Catalog: catalog,
		Store:   store,
		ControllerDeps: questionnaire.ControllerDeps{
			Catalog:   catalog,
			Resolver:  questionnaire.NewResolver(store, catalog, log, questionnaire.ResolverOptions{StaleAfter: cfg.AttemptStaleAfter}),
			Store:     store,
			Finalizer: questionnaire.NewFinalizer(store, generator, log),
			Log:       log,
		},
	}
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients, svc Services) (Services, error) {
	log.Info("Wiring services...")
	svc.Questionnaire = services.NewQuestionnaireService(log, svc.ControllerDeps, cfg.SessionIdleTTL)
	svc.History = services.NewHistoryService(db, log, repos.Attempt, repos.Recommendation, svc.Catalog, svc.Questionnaire)

	identity, err := services.NewIdentityService(log, clients.IdentityCache, services.IdentityConfig{
		JWTSecret: cfg.IdentityJWTSecret,
		Issuer:    cfg.IdentityJWTIssuer,
		CacheTTL:  cfg.IdentityCacheTTL,
	})
	if err != nil {
		return svc, err
	}
	svc.Identity = identity
	return svc, nil
}
