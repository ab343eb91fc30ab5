// Package insight requests a natural-language security summary for one scan
// result from a Gemini-style generative-language endpoint. A failure here is
// never fatal to the scan: the orchestrator substitutes FallbackMessage and
// the graph stays fully usable.
package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/xkilldash9x/recongraph/api/schemas"
	"github.com/xkilldash9x/recongraph/internal/config"
)

// FallbackMessage is shown in place of recommendations whenever generation
// fails for any reason.
const FallbackMessage = "Unable to generate recommendations at this time. Please try again later."

// preamble is the fixed instruction prepended to every insight request.
const preamble = "Based on the following digital footprint data, provide specific security recommendations " +
	"and privacy advice in a concise manner. " +
	"Focus on actionable steps the user can take to improve their security and privacy. " +
	"Format the response with bullet points and clear small concise sections."

// Client implements the insight generation call against the Gemini REST API.
type Client struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
	config     config.InsightConfig
}

// -- Gemini API Request/Response Structures (internal to this file) --

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiSystemInstruction struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type geminiRequestPayload struct {
	Contents          []geminiContent          `json:"contents"`
	SystemInstruction *geminiSystemInstruction `json:"system_instruction,omitempty"`
	GenerationConfig  geminiGenerationConfig   `json:"generationConfig,omitempty"`
}

type geminiResponsePayload struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

// NewClient initializes the insight client.
func NewClient(cfg config.InsightConfig, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("insight API key is required")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent", cfg.Model)
	}

	return &Client{
		apiKey:   cfg.APIKey,
		endpoint: endpoint,
		config:   cfg,
		httpClient: &http.Client{
			Timeout: cfg.APITimeout,
		},
		logger: logger.Named("insight"),
	}, nil
}

// BuildRequest assembles the generation request for one scan result: the
// fixed preamble plus the pretty-printed result JSON as context.
func BuildRequest(result *schemas.ScanResult, temperature float32) (schemas.GenerationRequest, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return schemas.GenerationRequest{}, fmt.Errorf("failed to marshal scan result for insight: %w", err)
	}
	return schemas.GenerationRequest{
		SystemPrompt: preamble,
		UserPrompt:   "Digital Footprint Data:\n" + string(data),
		Options: schemas.GenerationOptions{
			Temperature: temperature,
		},
	}, nil
}

// GenerateResponse sends the prompts to the API and returns the generated
// content, retrying transient failures with exponential backoff.
func (c *Client) GenerateResponse(ctx context.Context, req schemas.GenerationRequest) (string, error) {
	payload := c.buildRequestPayload(req)

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request payload: %w", err)
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 2 * time.Minute
	b.MaxInterval = 30 * time.Second

	var responseContent string

	operation := func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(body))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create HTTP request: %w", err))
		}

		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("x-goog-api-key", c.apiKey)

		startTime := time.Now()
		resp, err := c.httpClient.Do(httpReq)
		duration := time.Since(startTime)

		if err != nil {
			c.logger.Warn("Network error during insight request, retrying...", zap.Error(err))
			return fmt.Errorf("failed to execute HTTP request: %w", err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			return c.handleAPIError(resp.StatusCode, respBody)
		}

		var responsePayload geminiResponsePayload
		if err := json.Unmarshal(respBody, &responsePayload); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode response payload: %w", err))
		}

		if len(responsePayload.Candidates) == 0 {
			return backoff.Permanent(fmt.Errorf("insight API returned no candidates"))
		}

		candidate := responsePayload.Candidates[0]
		if len(candidate.Content.Parts) == 0 {
			if candidate.FinishReason == "SAFETY" || candidate.FinishReason == "BLOCKLIST" {
				return backoff.Permanent(fmt.Errorf("insight API blocked the request (Reason: %s)", candidate.FinishReason))
			}
			return fmt.Errorf("insight API returned empty content parts (Reason: %s)", candidate.FinishReason)
		}

		c.logger.Info("Insight generation complete",
			zap.Duration("duration", duration),
			zap.Int("prompt_tokens", responsePayload.UsageMetadata.PromptTokenCount),
			zap.Int("completion_tokens", responsePayload.UsageMetadata.CandidatesTokenCount),
			zap.Int("total_tokens", responsePayload.UsageMetadata.TotalTokenCount),
		)

		responseContent = candidate.Content.Parts[0].Text
		return nil
	}

	if err = backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return "", err
	}

	return responseContent, nil
}

func (c *Client) buildRequestPayload(req schemas.GenerationRequest) geminiRequestPayload {
	genConfig := geminiGenerationConfig{
		Temperature:     float64(req.Options.Temperature),
		MaxOutputTokens: c.config.MaxTokens,
	}
	if req.Options.ForceJSONFormat {
		genConfig.ResponseMimeType = "application/json"
	}

	return geminiRequestPayload{
		Contents: []geminiContent{
			{
				Role: "user",
				Parts: []geminiPart{
					{Text: req.UserPrompt},
				},
			},
		},
		SystemInstruction: &geminiSystemInstruction{
			Parts: []geminiPart{
				{Text: req.SystemPrompt},
			},
		},
		GenerationConfig: genConfig,
	}
}

func (c *Client) handleAPIError(statusCode int, body []byte) error {
	c.logger.Error("Insight API returned error status", zap.Int("status", statusCode), zap.String("response", string(body)))
	err := fmt.Errorf("insight API error: status %d, body: %s", statusCode, string(body))

	switch statusCode {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusInternalServerError:
		return err // Transient errors, retry.
	default:
		return backoff.Permanent(err) // Permanent errors.
	}
}
