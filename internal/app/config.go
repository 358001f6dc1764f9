package app

import (
	"strings"
	"time"

	"github.com/yungbote/majorcompass-backend/internal/data/db"
	"github.com/yungbote/majorcompass-backend/internal/modules/questionnaire"
	"github.com/yungbote/majorcompass-backend/internal/observability"
	"github.com/yungbote/majorcompass-backend/internal/platform/envutil"
	"github.com/yungbote/majorcompass-backend/internal/platform/gemini"
	"github.com/yungbote/majorcompass-backend/internal/platform/logger"
	"github.com/yungbote/majorcompass-backend/internal/platform/openai"
)

const (
	ScorerOpenAI = "openai"
	ScorerGemini = "gemini"
	ScorerNone   = "none"
)

type Config struct {
	Port        string
	Environment string
	Version     string

	DB db.Config

	IdentityJWTSecret string
	IdentityJWTIssuer string
	IdentityCacheTTL  time.Duration
	RedisAddr         string
	RedisPrefix       string

	ScorerProvider        string
	OpenAI                openai.Config
	Gemini                gemini.Config
	RecommendationTimeout time.Duration

	AttemptStaleAfter time.Duration
	SessionIdleTTL    time.Duration
	JanitorInterval   time.Duration

	CORSOrigins []string
	Otel        observability.OtelConfig
}

func LoadConfig(log *logger.Logger) Config {
	env := envutil.String("APP_ENV", "development")
	version := envutil.String("APP_VERSION", "dev")
	cfg := Config{
		Port:        envutil.String("PORT", "8080"),
		Environment: env,
		Version:     version,
		DB: db.Config{
			Driver:           envutil.String("DB_DRIVER", db.DriverPostgres),
			PostgresHost:     envutil.String("POSTGRES_HOST", "localhost"),
			PostgresPort:     envutil.String("POSTGRES_PORT", "5432"),
			PostgresUser:     envutil.String("POSTGRES_USER", "postgres"),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", ""),
			PostgresName:     envutil.String("POSTGRES_NAME", "majorcompass"),
			PostgresSSLMode:  envutil.String("POSTGRES_SSLMODE", "disable"),
			SQLitePath:       envutil.String("SQLITE_PATH", "majorcompass.db"),
			MaxOpenConns:     envutil.Int("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:     envutil.Int("DB_MAX_IDLE_CONNS", 5),
			SlowQuery:        envutil.Duration("DB_SLOW_QUERY", time.Second),
		},
		IdentityJWTSecret:     envutil.String("IDENTITY_JWT_SECRET", ""),
		IdentityJWTIssuer:     envutil.String("IDENTITY_JWT_ISSUER", ""),
		IdentityCacheTTL:      envutil.Duration("IDENTITY_CACHE_TTL", 5*time.Minute),
		RedisAddr:             envutil.String("REDIS_ADDR", ""),
		RedisPrefix:           envutil.String("REDIS_PREFIX", "majorcompass"),
		ScorerProvider:        strings.ToLower(envutil.String("SCORER_PROVIDER", ScorerOpenAI)),
		OpenAI:                openai.ConfigFromEnv(),
		Gemini:                gemini.ConfigFromEnv(),
		RecommendationTimeout: envutil.Duration("RECOMMENDATION_TIMEOUT", questionnaire.DefaultGenerationTimeout),
		AttemptStaleAfter:     envutil.Duration("ATTEMPT_STALE_AFTER", questionnaire.DefaultStaleAfter),
		SessionIdleTTL:        envutil.Duration("SESSION_IDLE_TTL", 2*time.Hour),
		JanitorInterval:       envutil.Duration("SESSION_JANITOR_INTERVAL", 5*time.Minute),
		CORSOrigins:           envutil.List("CORS_ALLOWED_ORIGINS", nil),
		Otel:                  observability.OtelConfigFromEnv(env, version),
	}
	log.Info("Config loaded",
		"port", cfg.Port,
		"db_driver", cfg.DB.Driver,
		"scorer_provider", cfg.ScorerProvider,
		"redis_enabled", cfg.RedisAddr != "",
		"otel_enabled", cfg.Otel.Enabled,
	)
	return cfg
}
