// Package scanservice is the HTTP client for the external reconnaissance
// backend. Two logical endpoints exist: /scan for attack-surface targets
// (IPs and domains) and /footprint for identity targets (emails, phone
// numbers, usernames). Both take {"query": ...} and answer with the same
// optional-section result shape.
package scanservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/recongraph/api/schemas"
	"github.com/xkilldash9x/recongraph/internal/config"
)

// scanRequest is the wire form of a scan submission.
type scanRequest struct {
	Query string `json:"query"`
}

// Client talks to the Scan Service. A single request is made per scan
// attempt; transport failures and error bodies are terminal for that attempt
// and surface as errors (the orchestrator never retries a scan).
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient builds a Client from configuration.
func NewClient(cfg config.ScanServiceConfig, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("scan service base URL is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Named("scan_service"),
	}, nil
}

// AttackSurface runs an IP/domain-centric scan.
func (c *Client) AttackSurface(ctx context.Context, query string) (*schemas.ScanResult, error) {
	return c.post(ctx, "/scan", query)
}

// Footprint runs an identity-centric scan (email, phone or username).
func (c *Client) Footprint(ctx context.Context, query string) (*schemas.ScanResult, error) {
	return c.post(ctx, "/footprint", query)
}

func (c *Client) post(ctx context.Context, path, query string) (*schemas.ScanResult, error) {
	body, err := json.Marshal(scanRequest{Query: query})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal scan request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create scan request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scan service unreachable: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read scan response: %w", err)
	}

	c.logger.Debug("Scan service responded",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	var result schemas.ScanResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("scan service returned a malformed body (status %d): %w", resp.StatusCode, err)
	}

	// The service reports failures both via status codes and via an explicit
	// error field in an otherwise well-formed body. Either one means no
	// usable result.
	if result.Error != "" {
		return nil, fmt.Errorf("scan service error: %s", result.Error)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scan service returned status %d", resp.StatusCode)
	}

	return &result, nil
}
