// Package azure implements the llm.Client interface against an Azure OpenAI
// deployment endpoint.
package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"building-risk-service/models"
	"building-risk-service/request"
)

const defaultAPIVersion = "2024-04-01-preview"

// Config carries the connection settings for one Azure OpenAI deployment.
// It is supplied explicitly by the caller; the client holds no ambient state.
type Config struct {
	Endpoint   string
	APIKey     string
	Deployment string
	APIVersion string
	Timeout    time.Duration
}

// Validate fails fast with a ConfigurationError when any required setting is
// missing. It is called before every send, so a misconfigured client never
// attempts network I/O.
func (c Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Endpoint) == "" {
		missing = append(missing, "endpoint")
	}
	if strings.TrimSpace(c.APIKey) == "" {
		missing = append(missing, "api key")
	}
	if strings.TrimSpace(c.Deployment) == "" {
		missing = append(missing, "deployment name")
	}
	if len(missing) > 0 {
		return &models.ConfigurationError{Missing: missing}
	}
	return nil
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content any `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Client talks to the Azure OpenAI chat completions API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a client for the given deployment. Configuration is not
// validated here; a misconfigured client reports a ConfigurationError on
// first use, which is the condition the health check surfaces.
func NewClient(cfg Config) *Client {
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaultAPIVersion
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// SourceName identifies this provider in reports and logs.
func (c *Client) SourceName() string {
	return "AzureOpenAI"
}

// AnalyzeImages builds the multi-image analysis request and performs one
// request/response call against the deployment.
func (c *Client) AnalyzeImages(ctx context.Context, images []models.ImageAsset) (string, error) {
	req, err := request.Build(images)
	if err != nil {
		return "", err
	}
	return c.send(ctx, req)
}

// CheckHealth performs a minimal text-only round-trip. Configuration errors
// short-circuit before any network call.
func (c *Client) CheckHealth(ctx context.Context) error {
	_, err := c.send(ctx, request.BuildHealthProbe())
	return err
}

// send performs exactly one attempt per call. There is deliberately no retry
// policy here: callers that want retries wrap the client.
func (c *Client) send(ctx context.Context, chatReq *request.ChatRequest) (string, error) {
	if err := c.cfg.Validate(); err != nil {
		return "", err
	}

	jsonData, err := json.Marshal(chatReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		strings.TrimRight(c.cfg.Endpoint, "/"), c.cfg.Deployment, c.cfg.APIVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("api-key", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &models.TransportError{Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &models.TransportError{Cause: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &models.TransportError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", &models.TransportError{Cause: fmt.Errorf("failed to parse completion envelope: %w", err)}
	}
	if len(chatResp.Choices) == 0 {
		return "", &models.TransportError{Cause: errors.New("no choices in response")}
	}

	// Content is usually a plain string, but some deployments return
	// structured content parts.
	content := chatResp.Choices[0].Message.Content
	if contentStr, ok := content.(string); ok {
		return contentStr, nil
	}
	contentJSON, err := json.Marshal(content)
	if err != nil {
		return "", &models.TransportError{Cause: fmt.Errorf("failed to marshal content: %w", err)}
	}
	return string(contentJSON), nil
}
