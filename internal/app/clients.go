package app

import (
	"context"
	"fmt"
	"io"

	"github.com/yungbote/majorcompass-backend/internal/clients/redis"
	"github.com/yungbote/majorcompass-backend/internal/platform/gemini"
	"github.com/yungbote/majorcompass-backend/internal/platform/logger"
	"github.com/yungbote/majorcompass-backend/internal/platform/openai"
	"github.com/yungbote/majorcompass-backend/internal/services"
)

type Clients struct {
	// LLM is nil when SCORER_PROVIDER=none or the provider could not be
	// configured; the questionnaire then always serves the fallback set.
	LLM         services.JSONGenerator
	LLMProvider string

	IdentityCache services.IdentityCache

	closers []io.Closer
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config, withIdentity bool) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	switch cfg.ScorerProvider {
	case ScorerNone:
		log.Warn("Scorer disabled; recommendations will use the fallback set")
	case ScorerGemini:
		gc, err := gemini.NewClient(ctx, log, cfg.Gemini)
		if err != nil {
			log.Warn("Gemini client unavailable; recommendations will use the fallback set", "error", err)
			break
		}
		out.LLM, out.LLMProvider = gc, ScorerGemini
	case ScorerOpenAI, "":
		oc, err := openai.NewClient(log, cfg.OpenAI)
		if err != nil {
			log.Warn("OpenAI client unavailable; recommendations will use the fallback set", "error", err)
			break
		}
		out.LLM, out.LLMProvider = oc, ScorerOpenAI
	default:
		return out, fmt.Errorf("unsupported SCORER_PROVIDER %q", cfg.ScorerProvider)
	}

	if !withIdentity {
		return out, nil
	}
	if cfg.RedisAddr == "" {
		out.IdentityCache = services.NewMemoryIdentityCache()
		return out, nil
	}
	rc, err := redis.NewIdentityCache(log, cfg.RedisAddr, cfg.RedisPrefix)
	if err != nil {
		return out, fmt.Errorf("init redis identity cache: %w", err)
	}
	out.IdentityCache = rc
	if c, ok := rc.(io.Closer); ok {
		out.closers = append(out.closers, c)
	}
	return out, nil
}

func (c Clients) Close() {
	for _, cl := range c.closers {
		_ = cl.Close()
	}
}
