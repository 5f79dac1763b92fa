package models

import "strings"

// RiskLevel is the ordinal risk rating used both overall and per category.
type RiskLevel string

const (
	LevelLow      RiskLevel = "Low"
	LevelMedium   RiskLevel = "Medium"
	LevelHigh     RiskLevel = "High"
	LevelCritical RiskLevel = "Critical"
	// LevelUnknown is the sentinel used when the model's answer could not be
	// mapped onto a known level.
	LevelUnknown RiskLevel = "Unknown"
)

// ParseRiskLevel coerces free-form model output onto a known level.
// Matching is case-insensitive; common synonyms are folded in; anything
// unrecognized becomes Unknown rather than a fabricated value.
func ParseRiskLevel(s string) RiskLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return LevelLow
	case "medium", "moderate":
		return LevelMedium
	case "high", "elevated":
		return LevelHigh
	case "critical", "severe":
		return LevelCritical
	default:
		return LevelUnknown
	}
}

// RiskCategory is one of the fixed underwriting categories. The set is not
// user-extensible.
type RiskCategory string

const (
	CategoryFireLifeSafety RiskCategory = "Fire & Life Safety"
	CategoryStructural     RiskCategory = "Structural & Construction"
	CategorySecurity       RiskCategory = "Security"
	CategoryWaterDamage    RiskCategory = "Water Damage & Flood"
	CategoryEnvironmental  RiskCategory = "Environmental & Location"
)

// Categories returns the fixed category set in report order.
func Categories() []RiskCategory {
	return []RiskCategory{
		CategoryFireLifeSafety,
		CategoryStructural,
		CategorySecurity,
		CategoryWaterDamage,
		CategoryEnvironmental,
	}
}

// MaxImagesPerAnalysis caps the number of images accepted per request.
const MaxImagesPerAnalysis = 10

var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// AllowedImageType reports whether the declared content type is accepted.
func AllowedImageType(contentType string) bool {
	return allowedContentTypes[strings.ToLower(strings.TrimSpace(contentType))]
}

// ImageAsset is one uploaded building photograph. It lives in memory for the
// duration of a single analysis call and is never persisted.
type ImageAsset struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
}

// CategoryAssessment is the per-category portion of a RiskReport.
type CategoryAssessment struct {
	Category        RiskCategory `json:"category"`
	Level           RiskLevel    `json:"level"`
	Findings        string       `json:"findings"`
	Recommendations string       `json:"recommendations"`
}

// RiskReport is the normalized analysis result handed to the presentation
// layer. It is never nil: when the model's reply cannot be parsed, a fallback
// report is produced with sentinel overall values, Fallback set, and the raw
// model text preserved for diagnostics.
type RiskReport struct {
	OverallLevel         RiskLevel            `json:"overall_level"`
	OverallScore         float64              `json:"overall_score"`
	Assessments          []CategoryAssessment `json:"assessments"`
	KeyFindings          []string             `json:"key_findings"`
	Recommendations      []string             `json:"recommendations"`
	AdditionalInfoNeeded []string             `json:"additional_info_needed"`
	Fallback             bool                 `json:"fallback"`
	RawResponse          string               `json:"raw_response"`
}

// HealthStatus is the result of a connectivity probe. Produced fresh on each
// check, never persisted.
type HealthStatus struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}
