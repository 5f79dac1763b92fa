package request

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"building-risk-service/models"
)

func testImages(n int, contentType string) []models.ImageAsset {
	images := make([]models.ImageAsset, 0, n)
	for i := 0; i < n; i++ {
		images = append(images, models.ImageAsset{
			Name:        fmt.Sprintf("building-%d.jpg", i),
			ContentType: contentType,
			Data:        []byte{0xff, 0xd8, byte(i), 0x01, 0x02},
		})
	}
	return images
}

func TestBuildValidation(t *testing.T) {
	tests := []struct {
		name    string
		images  []models.ImageAsset
		wantErr bool
	}{
		{name: "single jpeg", images: testImages(1, "image/jpeg"), wantErr: false},
		{name: "ten png", images: testImages(10, "image/png"), wantErr: false},
		{name: "webp accepted", images: testImages(3, "image/webp"), wantErr: false},
		{name: "no images", images: nil, wantErr: true},
		{name: "empty slice", images: []models.ImageAsset{}, wantErr: true},
		{name: "eleven images", images: testImages(11, "image/jpeg"), wantErr: true},
		{name: "gif rejected", images: testImages(1, "image/gif"), wantErr: true},
		{name: "missing content type", images: testImages(1, ""), wantErr: true},
		{
			name: "one bad asset among good",
			images: append(testImages(2, "image/jpeg"), models.ImageAsset{
				Name:        "notes.pdf",
				ContentType: "application/pdf",
				Data:        []byte{0x01},
			}),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := Build(tt.images)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Build() expected error but got none")
				}
				var validationErr *models.ValidationError
				if !errors.As(err, &validationErr) {
					t.Errorf("Build() error = %v, want *models.ValidationError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Build() unexpected error: %v", err)
			}
			if len(req.Messages) != 2 {
				t.Fatalf("Build() messages = %d, want 2", len(req.Messages))
			}
			content, ok := req.Messages[1].Content.([]any)
			if !ok {
				t.Fatal("Build() user message content is not a part list")
			}
			if got, want := len(content), len(tt.images)+1; got != want {
				t.Errorf("Build() user parts = %d, want %d", got, want)
			}
		})
	}
}

func TestBuildDeterministic(t *testing.T) {
	images := testImages(3, "image/jpeg")

	first, err := Build(images)
	if err != nil {
		t.Fatalf("Build() unexpected error: %v", err)
	}
	second, err := Build(images)
	if err != nil {
		t.Fatalf("Build() unexpected error: %v", err)
	}

	firstJSON, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("Marshal() unexpected error: %v", err)
	}
	secondJSON, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("Marshal() unexpected error: %v", err)
	}

	if !bytes.Equal(firstJSON, secondJSON) {
		t.Error("Build() payloads differ for identical inputs")
	}
}

func TestBuildImageRoundTrip(t *testing.T) {
	images := testImages(1, "image/png")

	req, err := Build(images)
	if err != nil {
		t.Fatalf("Build() unexpected error: %v", err)
	}

	content := req.Messages[1].Content.([]any)
	imagePart, ok := content[1].(ImageContent)
	if !ok {
		t.Fatal("second user part is not an image")
	}

	prefix := "data:image/png;base64,"
	if !strings.HasPrefix(imagePart.ImageURL.URL, prefix) {
		t.Fatalf("image URL %q missing data URL prefix %q", imagePart.ImageURL.URL[:32], prefix)
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(imagePart.ImageURL.URL, prefix))
	if err != nil {
		t.Fatalf("base64 decode failed: %v", err)
	}
	if !bytes.Equal(decoded, images[0].Data) {
		t.Error("decoded image bytes differ from original")
	}
	if imagePart.ImageURL.Detail != "high" {
		t.Errorf("image detail = %q, want high", imagePart.ImageURL.Detail)
	}
}

func TestBuildPromptEnumeratesCategories(t *testing.T) {
	req, err := Build(testImages(2, "image/jpeg"))
	if err != nil {
		t.Fatalf("Build() unexpected error: %v", err)
	}

	system, ok := req.Messages[0].Content.(string)
	if !ok {
		t.Fatal("system message content is not a string")
	}
	for _, category := range models.Categories() {
		if !strings.Contains(system, string(category)) {
			t.Errorf("system prompt does not mention category %q", category)
		}
	}
	if !strings.Contains(system, "overallScore") {
		t.Error("system prompt does not spell out the JSON schema")
	}
}

func TestBuildMaxTokensByImageCount(t *testing.T) {
	single, err := Build(testImages(1, "image/jpeg"))
	if err != nil {
		t.Fatalf("Build() unexpected error: %v", err)
	}
	multi, err := Build(testImages(4, "image/jpeg"))
	if err != nil {
		t.Fatalf("Build() unexpected error: %v", err)
	}

	if single.MaxTokens != maxTokensSingleImage {
		t.Errorf("single-image max_tokens = %d, want %d", single.MaxTokens, maxTokensSingleImage)
	}
	if multi.MaxTokens != maxTokensMultiImage {
		t.Errorf("multi-image max_tokens = %d, want %d", multi.MaxTokens, maxTokensMultiImage)
	}
}

func TestBuildHealthProbe(t *testing.T) {
	probe := BuildHealthProbe()

	if len(probe.Messages) != 2 {
		t.Fatalf("health probe messages = %d, want 2", len(probe.Messages))
	}
	for _, msg := range probe.Messages {
		if _, ok := msg.Content.(string); !ok {
			t.Error("health probe must be text-only")
		}
	}
	if probe.MaxTokens >= maxTokensSingleImage {
		t.Errorf("health probe max_tokens = %d, expected a minimal budget", probe.MaxTokens)
	}
	if probe.Temperature != 0 {
		t.Errorf("health probe temperature = %v, want 0", probe.Temperature)
	}
}
