package app

import (
	"github.com/yungbote/majorcompass-backend/internal/data/db"
	"github.com/yungbote/majorcompass-backend/internal/http"
	httpH "github.com/yungbote/majorcompass-backend/internal/http/handlers"
	httpMW "github.com/yungbote/majorcompass-backend/internal/http/middleware"
	"github.com/yungbote/majorcompass-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health        *httpH.HealthHandler
	Questionnaire *httpH.QuestionnaireHandler
	History       *httpH.HistoryHandler
	Me            *httpH.MeHandler
}

func wireHandlers(log *logger.Logger, dbs *db.Service, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:        httpH.NewHealthHandler(dbs),
		Questionnaire: httpH.NewQuestionnaireHandler(services.Questionnaire),
		History:       httpH.NewHistoryHandler(services.History),
		Me:            httpH.NewMeHandler(services.History, services.Identity, services.Questionnaire),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Identity),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware) *http.Server {
	return http.NewServer(":"+cfg.Port, http.RouterConfig{
		Log:                  log,
		ServiceName:          cfg.Otel.ServiceName,
		CORSOrigins:          cfg.CORSOrigins,
		AuthMiddleware:       middleware.Auth,
		HealthHandler:        handlers.Health,
		QuestionnaireHandler: handlers.Questionnaire,
		HistoryHandler:       handlers.History,
		MeHandler:            handlers.Me,
	})
}
