// Package stubllm is a deterministic, no-network provider intended for CI
// and local end-to-end runs. It returns schema-valid JSON so the full
// build → send → normalize path is exercised without a hosted model.
package stubllm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"building-risk-service/models"
	"building-risk-service/request"
)

type Client struct{}

func NewClient() *Client { return &Client{} }

func (c *Client) SourceName() string { return "Stub" }

func (c *Client) CheckHealth(ctx context.Context) error { return nil }

func (c *Client) AnalyzeImages(ctx context.Context, images []models.ImageAsset) (string, error) {
	// Run the real builder so the stub honors the same validation contract
	// as the hosted providers.
	if _, err := request.Build(images); err != nil {
		return "", err
	}

	// Output is deterministic per input so pipelines are stable in CI.
	h := sha256.New()
	for _, img := range images {
		h.Write([]byte(img.Name))
		h.Write(img.Data)
	}
	short := hex.EncodeToString(h.Sum(nil)[:8])

	categories := map[string]any{}
	for _, category := range models.Categories() {
		categories[string(category)] = map[string]any{
			"level":           "Low",
			"findings":        fmt.Sprintf("Stubbed assessment for %s.", category),
			"recommendations": "No action required.",
		}
	}

	out := map[string]any{
		"overallLevel":         "Low",
		"overallScore":         2,
		"categories":           categories,
		"keyFindings":          []string{fmt.Sprintf("CI stub analysis of %d image(s) (%s)", len(images), short)},
		"recommendations":      []string{"Review with a live model before underwriting."},
		"additionalInfoNeeded": []string{},
	}

	b, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
