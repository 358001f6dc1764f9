package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/majorcompass-backend/internal/modules/questionnaire"
	"github.com/yungbote/majorcompass-backend/internal/platform/logger"
)

// JSONGenerator is implemented by the OpenAI and Gemini platform clients.
type JSONGenerator interface {
	GenerateJSONText(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (string, error)
	Model() string
}

// ErrScorerUnavailable is returned by the scorer built for SCORER_PROVIDER=none.
var ErrScorerUnavailable = errors.New("recommendation scorer not configured")

type llmScorer struct {
	log      *logger.Logger
	gen      JSONGenerator
	catalog  *questionnaire.Catalog
	provider string
}

func NewLLMScorer(log *logger.Logger, provider string, gen JSONGenerator, catalog *questionnaire.Catalog) questionnaire.Scorer {
	if catalog == nil {
		catalog = questionnaire.DefaultCatalog()
	}
	return &llmScorer{
		log:      log.With("service", "RecommendationScorer", "provider", provider),
		gen:      gen,
		catalog:  catalog,
		provider: provider,
	}
}

func (s *llmScorer) Score(ctx context.Context, answers questionnaire.AnswerState) (*questionnaire.Result, error) {
	ctx, span := otel.Tracer("majorcompass/services").Start(ctx, "recommendations.score")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.provider", s.provider),
		attribute.String("llm.model", s.gen.Model()),
	)

	text, err := s.gen.GenerateJSONText(ctx, recommendationSystemPrompt, renderAnswers(s.catalog, answers), recommendationSchemaName, recommendationSchema())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate")
		return nil, err
	}
	res, err := ParseRecommendations(text)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse")
		s.log.Debug("Unusable scorer payload", "error", err, "bytes", len(text))
		return nil, err
	}
	span.SetAttributes(attribute.Int("recommendations.count", len(res.Recommendations)))
	return res, nil
}

type unavailableScorer struct{}

// NewUnavailableScorer returns a scorer that always fails, so every
// generation serves the fallback result.
func NewUnavailableScorer() questionnaire.Scorer { return unavailableScorer{} }

func (unavailableScorer) Score(context.Context, questionnaire.AnswerState) (*questionnaire.Result, error) {
	return nil, ErrScorerUnavailable
}

type rawRecommendation struct {
	Major          string          `json:"major"`
	Confidence     json.RawMessage `json:"confidence"`
	Reasoning      string          `json:"reasoning"`
	CareerPaths    careerPaths     `json:"career_paths"`
	WhyGoodFit     string          `json:"why_good_fit"`
	Considerations string          `json:"considerations"`
}

type rawResult struct {
	Recommendations []rawRecommendation `json:"recommendations"`
	Summary         string              `json:"summary"`
}

// careerPaths accepts plain strings or {role, work_environment} objects.
type careerPaths []string

func (p *careerPaths) UnmarshalJSON(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
			continue
		}
		var obj struct {
			Role            string `json:"role"`
			WorkEnvironment string `json:"work_environment"`
		}
		if err := json.Unmarshal(item, &obj); err != nil {
			return err
		}
		role := strings.TrimSpace(obj.Role)
		env := strings.TrimSpace(obj.WorkEnvironment)
		switch {
		case role == "":
			continue
		case env != "":
			out = append(out, fmt.Sprintf("%s (%s)", role, env))
		default:
			out = append(out, role)
		}
	}
	*p = out
	return nil
}

// ParseRecommendations decodes scorer output. Code fences and prose around
// the JSON object are tolerated. An empty payload or an object with no usable
// recommendation is ErrEmptyPayload; anything undecodable is ErrMalformedPayload.
func ParseRecommendations(text string) (*questionnaire.Result, error) {
	body := extractJSONObject(text)
	if body == "" {
		return nil, questionnaire.ErrEmptyPayload
	}
	var raw rawResult
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", questionnaire.ErrMalformedPayload, err)
	}
	res := &questionnaire.Result{Summary: raw.Summary}
	for _, r := range raw.Recommendations {
		conf, err := parseConfidence(r.Confidence)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", questionnaire.ErrMalformedPayload, err)
		}
		res.Recommendations = append(res.Recommendations, questionnaire.Recommendation{
			Major:           r.Major,
			ConfidenceScore: conf,
			Reasoning:       r.Reasoning,
			CareerPaths:     []string(r.CareerPaths),
			FitStatement:    r.WhyGoodFit,
			CaveatStatement: r.Considerations,
		})
	}
	res.Normalize()
	if len(res.Recommendations) == 0 {
		return nil, questionnaire.ErrEmptyPayload
	}
	return res, nil
}

func cleanJSON(input string) string {
	clean := strings.TrimSpace(input)
	if strings.HasPrefix(clean, "```json") {
		clean = strings.TrimPrefix(clean, "```json")
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
	}
	clean = strings.TrimLeft(clean, "\r\n")
	clean = strings.TrimSuffix(strings.TrimSpace(clean), "```")
	return strings.TrimSpace(clean)
}

func extractJSONObject(text string) string {
	clean := cleanJSON(text)
	if clean == "" || strings.HasPrefix(clean, "{") {
		return clean
	}
	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start < 0 || end <= start {
		return clean
	}
	return clean[start : end+1]
}

// parseConfidence accepts 85, 85.0, "85" and "85%". A missing value is 0 and
// gets clamped by Normalize.
func parseConfidence(raw json.RawMessage) (int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return int(f + 0.5), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("confidence: %w", err)
	}
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("confidence %q: %w", s, err)
	}
	return int(f + 0.5), nil
}
