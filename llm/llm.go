package llm

import (
	"context"

	"building-risk-service/models"
)

// Client abstracts the hosted vision model provider used by the analyzer.
// Implementations must be concurrency-safe if used across goroutines.
type Client interface {
	// AnalyzeImages sends one multi-image analysis request and returns the
	// model's raw text reply. Validation, configuration and transport
	// failures surface as typed errors; malformed reply content does not.
	AnalyzeImages(ctx context.Context, images []models.ImageAsset) (string, error)
	// CheckHealth performs a minimal round-trip without images. A nil return
	// means the provider is reachable and credentials are accepted.
	CheckHealth(ctx context.Context) error
	// SourceName returns a short provider label (e.g., "AzureOpenAI", "Stub").
	SourceName() string
}
