package abstract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/zkjiang/autoabstract/internal/record"
	"github.com/zkjiang/autoabstract/internal/schema"
)

const (
	// OpenRouterBaseURL is the default completion service endpoint.
	OpenRouterBaseURL = "https://openrouter.ai/api/v1"

	// DefaultModel is the model requested when none is configured.
	DefaultModel = "google/gemma-3-27b-it:free"

	// DefaultReferer and DefaultAppTitle are the fixed fallbacks for the
	// OpenRouter attribution headers.
	DefaultReferer  = "http://localhost:3000"
	DefaultAppTitle = "Clinical Data Extraction"

	// fixedSeed makes repeated calls with identical input reproducible.
	fixedSeed = 42
)

// Config holds configuration for the OpenRouter extraction client.
type Config struct {
	APIKey   string
	BaseURL  string
	Model    string
	Referer  string
	AppTitle string
	Logger   *slog.Logger
	// HTTPClient overrides the transport, mainly for tests. The default
	// client carries no timeout: each extraction is a single round trip and
	// the caller decides how long to wait.
	HTTPClient *http.Client
}

// OpenRouterClient implements Extractor against the OpenRouter chat API.
//
// Each Extract call is exactly one request: no retry, no streaming, no
// caching. Failures surface to the caller, whose only recourse is to run the
// extraction again.
type OpenRouterClient struct {
	apiKey   string
	baseURL  string
	model    string
	referer  string
	appTitle string
	logger   *slog.Logger
	client   *http.Client
}

// NewOpenRouterClient creates a new extraction client.
func NewOpenRouterClient(cfg Config) *OpenRouterClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = OpenRouterBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Referer == "" {
		cfg.Referer = DefaultReferer
	}
	if cfg.AppTitle == "" {
		cfg.AppTitle = DefaultAppTitle
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}

	return &OpenRouterClient{
		apiKey:   cfg.APIKey,
		baseURL:  cfg.BaseURL,
		model:    cfg.Model,
		referer:  cfg.Referer,
		appTitle: cfg.AppTitle,
		logger:   cfg.Logger,
		client:   cfg.HTTPClient,
	}
}

// openRouterRequest is the wire request. Temperature has no omitempty on
// purpose: it is fixed at 0.0 and must be serialized.
type openRouterRequest struct {
	Model       string              `json:"model"`
	Messages    []openRouterMessage `json:"messages"`
	Temperature float64             `json:"temperature"`
	Seed        int                 `json:"seed"`
}

type openRouterMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openRouterResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content any    `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Extract issues one completion request constrained by the selected schema
// and parses the reply into a record.
func (c *OpenRouterClient) Extract(ctx context.Context, note string, fields []schema.Field) (*record.Record, error) {
	start := time.Now()
	requestID := uuid.New().String()

	target := schema.DefaultSchema()
	custom := len(fields) > 0
	if custom {
		target = schema.Generate(fields)
	}

	prompt, err := BuildPrompt(note, target, custom)
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}

	orReq := openRouterRequest{
		Model: c.model,
		Messages: []openRouterMessage{
			{Role: "user", Content: prompt},
		},
		Temperature: 0.0,
		Seed:        fixedSeed,
	}

	content, err := c.doRequest(ctx, &orReq)
	if err != nil {
		c.logger.Error("extraction failed",
			"request_id", requestID,
			"model", c.model,
			"custom_schema", custom,
			"error", err,
		)
		return nil, err
	}

	cleaned := StripCodeFence(content)
	rec, err := record.Decode([]byte(cleaned))
	if err != nil {
		c.logger.Error("extraction produced unparseable output",
			"request_id", requestID,
			"model", c.model,
			"error", err,
		)
		return nil, &ParseError{Err: err}
	}

	// Schema drift is tolerated, never rejected: the renderer degrades
	// gracefully. Log it so drifted models are visible in operation.
	if driftErr := checkDrift(target, cleaned); driftErr != nil {
		c.logger.Warn("model output drifted from requested schema",
			"request_id", requestID,
			"model", c.model,
			"issue", driftErr,
		)
	}

	c.logger.Info("extraction complete",
		"request_id", requestID,
		"model", c.model,
		"custom_schema", custom,
		"fields", rec.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rec, nil
}

// doRequest performs the single HTTP round trip and returns the first
// completion's text content.
func (c *OpenRouterClient) doRequest(ctx context.Context, orReq *openRouterRequest) (string, error) {
	bodyBytes, err := json.Marshal(orReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("HTTP-Referer", c.referer)
	req.Header.Set("X-Title", c.appTitle)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Code: resp.StatusCode, Body: string(respBody)}
	}

	var orResp openRouterResponse
	if err := json.Unmarshal(respBody, &orResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(orResp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	switch content := orResp.Choices[0].Message.Content.(type) {
	case string:
		if content == "" {
			return "", ErrEmptyResponse
		}
		return content, nil
	case nil:
		return "", ErrEmptyResponse
	default:
		// Some providers return structured content parts.
		b, err := json.Marshal(content)
		if err != nil {
			return "", ErrEmptyResponse
		}
		return string(b), nil
	}
}

// Verify interface
var _ Extractor = (*OpenRouterClient)(nil)
