package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/majorcompass-backend/internal/http/handlers"
	httpMW "github.com/yungbote/majorcompass-backend/internal/http/middleware"
	"github.com/yungbote/majorcompass-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler        *httpH.HealthHandler
	QuestionnaireHandler *httpH.QuestionnaireHandler
	HistoryHandler       *httpH.HistoryHandler
	MeHandler            *httpH.MeHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Questionnaire
		if cfg.QuestionnaireHandler != nil {
			protected.GET("/questionnaire/catalog", cfg.QuestionnaireHandler.Catalog)
			protected.POST("/questionnaire/session", cfg.QuestionnaireHandler.StartSession)
			protected.GET("/questionnaire/session", cfg.QuestionnaireHandler.GetSession)
			protected.POST("/questionnaire/session/answers", cfg.QuestionnaireHandler.Answer)
			protected.POST("/questionnaire/session/next", cfg.QuestionnaireHandler.Next)
			protected.POST("/questionnaire/session/back", cfg.QuestionnaireHandler.Back)
		}

		// History
		if cfg.HistoryHandler != nil {
			protected.GET("/history", cfg.HistoryHandler.List)
			protected.GET("/history/:id", cfg.HistoryHandler.Get)
		}

		// Me
		if cfg.MeHandler != nil {
			protected.GET("/me/export", cfg.MeHandler.Export)
			protected.DELETE("/me/data", cfg.MeHandler.DeleteData)
			protected.POST("/session/signout", cfg.MeHandler.SignOut)
		}
	}

	return r
}
