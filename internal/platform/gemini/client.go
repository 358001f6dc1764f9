package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/yungbote/majorcompass-backend/internal/platform/envutil"
	"github.com/yungbote/majorcompass-backend/internal/platform/logger"
)

type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float32
	HTTPClient  *http.Client
}

func ConfigFromEnv() Config {
	return Config{
		APIKey:      envutil.String("GEMINI_API_KEY", ""),
		Model:       envutil.String("GEMINI_MODEL", "gemini-2.5-flash"),
		BaseURL:     envutil.String("GEMINI_BASE_URL", ""),
		Temperature: 0.7,
	}
}

// Client generates JSON constrained by a response schema through the Gemini API.
type Client struct {
	log         *logger.Logger
	genai       *genai.Client
	model       string
	temperature float32
}

func NewClient(ctx context.Context, log *logger.Logger, cfg Config) (*Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gemini-2.5-flash"
	}
	gc := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		gc.HTTPOptions = genai.HTTPOptions{BaseURL: base}
	}
	client, err := genai.NewClient(ctx, gc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Client{
		log:         log.With("service", "GeminiClient"),
		genai:       client,
		model:       model,
		temperature: cfg.Temperature,
	}, nil
}

func (c *Client) Model() string { return c.model }

// GenerateJSONText returns the trimmed text of the first candidate. The
// schema name is unused by Gemini and only checked for parity with OpenAI.
func (c *Client) GenerateJSONText(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (string, error) {
	if schemaName == "" {
		return "", errors.New("schemaName required")
	}
	if schema == nil {
		return "", errors.New("schema required")
	}
	temp := c.temperature
	cfg := &genai.GenerateContentConfig{
		SystemInstruction:  genai.NewContentFromText(system, genai.RoleUser),
		ResponseMIMEType:   "application/json",
		ResponseJsonSchema: schema,
		Temperature:        &temp,
	}
	resp, err := c.genai.Models.GenerateContent(ctx, c.model, genai.Text(user), cfg)
	if err != nil {
		return "", asStatusError(err)
	}
	if resp == nil {
		return "", nil
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason)
	}
	return strings.TrimSpace(resp.Text()), nil
}

type statusError struct {
	code int
	err  error
}

func (e *statusError) Error() string       { return fmt.Sprintf("gemini http %d: %v", e.code, e.err) }
func (e *statusError) Unwrap() error       { return e.err }
func (e *statusError) HTTPStatusCode() int { return e.code }

func asStatusError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code != 0 {
		return &statusError{code: apiErr.Code, err: err}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil && apiErrPtr.Code != 0 {
		return &statusError{code: apiErrPtr.Code, err: err}
	}
	return err
}
