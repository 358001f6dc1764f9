package questionnaire

import (
	"context"
	"errors"
	"net"
	"net/url"
	"time"

	"github.com/yungbote/majorcompass-backend/internal/platform/httpx"
	"github.com/yungbote/majorcompass-backend/internal/platform/logger"
)

const DefaultGenerationTimeout = 60 * time.Second

// Scorer is the external recommendation source. Implementations may fail in
// any way; the Generator turns every failure into a fallback result.
type Scorer interface {
	Score(ctx context.Context, answers AnswerState) (*Result, error)
}

type FailureCategory string

const (
	FailureTimeout          FailureCategory = "timeout"
	FailureCanceled         FailureCategory = "canceled"
	FailureTransport        FailureCategory = "transport"
	FailureUpstreamStatus   FailureCategory = "upstream_status"
	FailureEmptyPayload     FailureCategory = "empty_payload"
	FailureMalformedPayload FailureCategory = "malformed_payload"
	FailureUnavailable      FailureCategory = "unavailable"
)

// Categorize maps a scorer error onto the category that is logged and
// recorded on the fallback result.
func Categorize(err error) FailureCategory {
	var sc httpx.HTTPStatusCoder
	var netErr net.Error
	var urlErr *url.Error
	switch {
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return FailureTimeout
	case errors.Is(err, context.Canceled):
		return FailureCanceled
	case errors.Is(err, ErrEmptyPayload):
		return FailureEmptyPayload
	case errors.Is(err, ErrMalformedPayload):
		return FailureMalformedPayload
	case errors.As(err, &sc):
		return FailureUpstreamStatus
	case errors.As(err, &urlErr), errors.As(err, &netErr):
		return FailureTransport
	default:
		return FailureUnavailable
	}
}

type Generator struct {
	scorer  Scorer
	timeout time.Duration
	log     *logger.Logger
}

func NewGenerator(scorer Scorer, timeout time.Duration, log *logger.Logger) *Generator {
	if timeout <= 0 {
		timeout = DefaultGenerationTimeout
	}
	return &Generator{
		scorer:  scorer,
		timeout: timeout,
		log:     log.With("component", "RecommendationGenerator"),
	}
}

// Generate always returns a result with at least one recommendation.
// IsFallback is set exactly when the scorer did not produce a usable
// result within the timeout.
func (g *Generator) Generate(ctx context.Context, answers AnswerState) *Result {
	if g.scorer == nil {
		return g.fallback(FailureUnavailable, errors.New("no scorer configured"), 0)
	}
	start := time.Now()
	res, err := WithTimeout(ctx, g.timeout, func(ctx context.Context) (*Result, error) {
		return g.scorer.Score(ctx, answers.Clone())
	})
	elapsed := time.Since(start)
	if err != nil {
		return g.fallback(Categorize(err), err, elapsed)
	}
	if res == nil {
		return g.fallback(FailureEmptyPayload, ErrEmptyPayload, elapsed)
	}
	out := res.Clone()
	out.Normalize()
	if len(out.Recommendations) == 0 {
		return g.fallback(FailureEmptyPayload, ErrEmptyPayload, elapsed)
	}
	out.IsFallback = false
	out.FailureReason = ""
	g.log.Info("Recommendations generated", "count", len(out.Recommendations), "duration_ms", elapsed.Milliseconds())
	return out
}

func (g *Generator) fallback(cat FailureCategory, err error, elapsed time.Duration) *Result {
	g.log.Warn("Recommendation scorer failed; serving fallback",
		"category", string(cat),
		"error", err,
		"duration_ms", elapsed.Milliseconds(),
	)
	return Fallback(cat)
}
