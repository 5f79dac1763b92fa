// Package request builds chat-completion payloads for the vision model.
// Building is a pure transformation: the same images in the same order always
// produce a byte-identical payload, so the pipeline is testable without a
// live model.
package request

import (
	"encoding/base64"
	"fmt"
	"strings"

	"building-risk-service/models"
)

type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type TextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type ImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type ImageContent struct {
	Type     string   `json:"type"`
	ImageURL ImageURL `json:"image_url"`
}

// ChatRequest is the provider-agnostic chat completion body. The transport
// layer owns the endpoint, deployment and credentials.
type ChatRequest struct {
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

const (
	analysisTemperature = 0.3

	maxTokensSingleImage = 2000
	maxTokensMultiImage  = 3000
)

// Build validates the image set and constructs one multi-image analysis
// request: a system prompt enumerating the risk categories and the expected
// JSON layout, followed by a user message carrying the text instruction and
// every image as a base64 data URL in upload order.
func Build(images []models.ImageAsset) (*ChatRequest, error) {
	if len(images) == 0 {
		return nil, &models.ValidationError{Reason: "at least one image is required"}
	}
	if len(images) > models.MaxImagesPerAnalysis {
		return nil, &models.ValidationError{
			Reason: fmt.Sprintf("at most %d images are allowed, got %d", models.MaxImagesPerAnalysis, len(images)),
		}
	}
	for _, img := range images {
		if !models.AllowedImageType(img.ContentType) {
			return nil, &models.ValidationError{
				Reason: fmt.Sprintf("unsupported content type %q for image %q (accepted: image/jpeg, image/png, image/webp)", img.ContentType, img.Name),
			}
		}
	}

	userContent := make([]any, 0, len(images)+1)
	userContent = append(userContent, TextContent{
		Type: "text",
		Text: userPrompt(len(images)),
	})
	for _, img := range images {
		userContent = append(userContent, ImageContent{
			Type: "image_url",
			ImageURL: ImageURL{
				URL:    encodeDataURL(img),
				Detail: "high",
			},
		})
	}

	maxTokens := maxTokensSingleImage
	if len(images) > 1 {
		maxTokens = maxTokensMultiImage
	}

	return &ChatRequest{
		Messages: []Message{
			{Role: "system", Content: systemPrompt(len(images))},
			{Role: "user", Content: userContent},
		},
		MaxTokens:   maxTokens,
		Temperature: analysisTemperature,
	}, nil
}

// BuildHealthProbe constructs the minimal text-only request used by the
// health check. No images are attached.
func BuildHealthProbe() *ChatRequest {
	return &ChatRequest{
		Messages: []Message{
			{Role: "system", Content: "You are a helpful assistant."},
			{Role: "user", Content: "Hello, please respond with 'OK' to confirm connectivity."},
		},
		MaxTokens:   10,
		Temperature: 0,
	}
}

// encodeDataURL converts image bytes into an inline data URL.
func encodeDataURL(img models.ImageAsset) string {
	return fmt.Sprintf("data:%s;base64,%s", img.ContentType, base64.StdEncoding.EncodeToString(img.Data))
}

func userPrompt(imageCount int) string {
	if imageCount > 1 {
		return fmt.Sprintf("Please analyze these %d building images for comprehensive insurance underwriting risk assessment. These images show different angles and aspects of the same building. Provide a thorough evaluation considering all visible risk factors across all images.", imageCount)
	}
	return "Please analyze this building image for insurance underwriting risk assessment. Provide a comprehensive evaluation of all visible risk factors."
}

func systemPrompt(imageCount int) string {
	var categoryList strings.Builder
	for _, category := range models.Categories() {
		fmt.Fprintf(&categoryList, "- %s\n", category)
	}

	plural := ""
	if imageCount > 1 {
		plural = "s"
	}

	return fmt.Sprintf(`You are an expert insurance underwriter specializing in building risk assessment.
You are analyzing %d image%s of the same building to provide a comprehensive risk assessment.

Assess the building against exactly these risk categories:
%s
For each category, consider visible evidence such as emergency exits and egress paths, fire suppression and detection, construction materials and structural condition, access control and lighting, drainage and plumbing condition, and surrounding hazards or natural disaster exposure.

Return a single JSON object with exactly this layout and nothing else:
{
  "overallLevel": "Low|Medium|High|Critical",
  "overallScore": <number from 0 to 10>,
  "categories": {
    "%s": {"level": "Low|Medium|High|Critical", "findings": "<text>", "recommendations": "<text>"},
    "%s": {"level": "Low|Medium|High|Critical", "findings": "<text>", "recommendations": "<text>"},
    "%s": {"level": "Low|Medium|High|Critical", "findings": "<text>", "recommendations": "<text>"},
    "%s": {"level": "Low|Medium|High|Critical", "findings": "<text>", "recommendations": "<text>"},
    "%s": {"level": "Low|Medium|High|Critical", "findings": "<text>", "recommendations": "<text>"}
  },
  "keyFindings": ["<finding>", "..."],
  "recommendations": ["<recommendation>", "..."],
  "additionalInfoNeeded": ["<information>", "..."]
}

Be thorough but realistic. Only identify risks that are clearly visible or reasonably inferred from the image%s. If a category cannot be assessed from the available views, say so in its findings rather than guessing.`,
		imageCount, plural, categoryList.String(),
		models.CategoryFireLifeSafety,
		models.CategoryStructural,
		models.CategorySecurity,
		models.CategoryWaterDamage,
		models.CategoryEnvironmental,
		plural)
}
