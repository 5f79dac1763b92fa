// Package parser normalizes raw model replies into RiskReports. Parsing is a
// pure function of the reply text and never fails: a malformed answer
// degrades into a fallback report instead of crashing the caller.
package parser

import (
	"encoding/json"
	"strings"

	"building-risk-service/models"
)

const (
	noInformationFindings = "No information provided."
	parseFailureFinding   = "Automated parsing failed; see raw response."
)

// rawReport is the field layout the model is instructed to produce.
type rawReport struct {
	OverallLevel         *string                `json:"overallLevel"`
	OverallScore         *float64               `json:"overallScore"`
	Categories           map[string]rawCategory `json:"categories"`
	KeyFindings          []string               `json:"keyFindings"`
	Recommendations      []string               `json:"recommendations"`
	AdditionalInfoNeeded []string               `json:"additionalInfoNeeded"`
}

type rawCategory struct {
	Level           string `json:"level"`
	Findings        string `json:"findings"`
	Recommendations string `json:"recommendations"`
}

// ParseReport parses and validates a raw model reply. The returned report is
// never nil; on any parse failure it carries sentinel overall values, the
// Fallback flag, and the original text verbatim.
func ParseReport(response string) *models.RiskReport {
	jsonContent := ExtractJSONFromMarkdown(strings.TrimSpace(response))

	var raw rawReport
	if err := json.Unmarshal([]byte(jsonContent), &raw); err != nil {
		return fallbackReport(response)
	}
	// Required top-level fields; their absence means the model ignored the
	// schema and the rest of the object cannot be trusted.
	if raw.OverallLevel == nil || raw.OverallScore == nil || raw.Categories == nil {
		return fallbackReport(response)
	}

	report := &models.RiskReport{
		OverallLevel:         models.ParseRiskLevel(*raw.OverallLevel),
		OverallScore:         clampScore(*raw.OverallScore),
		Assessments:          buildAssessments(raw.Categories),
		KeyFindings:          raw.KeyFindings,
		Recommendations:      raw.Recommendations,
		AdditionalInfoNeeded: raw.AdditionalInfoNeeded,
		RawResponse:          response,
	}
	return report
}

// buildAssessments produces exactly one assessment per fixed category, in
// category order. Categories the model omitted are synthesized with the
// Unknown sentinel instead of being dropped.
func buildAssessments(categories map[string]rawCategory) []models.CategoryAssessment {
	assessments := make([]models.CategoryAssessment, 0, len(models.Categories()))
	for _, category := range models.Categories() {
		entry, ok := lookupCategory(categories, string(category))
		if !ok {
			assessments = append(assessments, models.CategoryAssessment{
				Category: category,
				Level:    models.LevelUnknown,
				Findings: noInformationFindings,
			})
			continue
		}
		findings := strings.TrimSpace(entry.Findings)
		if findings == "" {
			findings = noInformationFindings
		}
		assessments = append(assessments, models.CategoryAssessment{
			Category:        category,
			Level:           models.ParseRiskLevel(entry.Level),
			Findings:        findings,
			Recommendations: strings.TrimSpace(entry.Recommendations),
		})
	}
	return assessments
}

func lookupCategory(categories map[string]rawCategory, name string) (rawCategory, bool) {
	if entry, ok := categories[name]; ok {
		return entry, true
	}
	// Tolerate casing drift in the model's category keys.
	for key, entry := range categories {
		if strings.EqualFold(strings.TrimSpace(key), name) {
			return entry, true
		}
	}
	return rawCategory{}, false
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}

// fallbackReport degrades instead of failing: sentinel overall values, all
// categories Unknown, and the unparsed reply preserved for display.
func fallbackReport(response string) *models.RiskReport {
	assessments := make([]models.CategoryAssessment, 0, len(models.Categories()))
	for _, category := range models.Categories() {
		assessments = append(assessments, models.CategoryAssessment{
			Category: category,
			Level:    models.LevelUnknown,
			Findings: noInformationFindings,
		})
	}
	return &models.RiskReport{
		OverallLevel: models.LevelUnknown,
		OverallScore: 0,
		Assessments:  assessments,
		KeyFindings:  []string{parseFailureFinding},
		Fallback:     true,
		RawResponse:  response,
	}
}

// ExtractJSONFromMarkdown strips a surrounding markdown code fence, or falls
// back to the outermost braces, so replies like "Here is the analysis:
// ```json {...} ```" still parse. Exported for reuse by the stub provider.
func ExtractJSONFromMarkdown(response string) string {
	const fence = "```"

	start := strings.Index(response, fence)
	if start == -1 {
		return extractBraces(response)
	}
	rest := response[start+len(fence):]
	end := strings.Index(rest, fence)
	if end == -1 {
		return response
	}
	content := strings.TrimSpace(rest[:end])

	// Drop the language identifier line if present (e.g., "json").
	if lines := strings.SplitN(content, "\n", 2); len(lines) == 2 {
		if tag := strings.TrimSpace(lines[0]); tag == "json" || tag == "JSON" {
			content = lines[1]
		}
	}
	return strings.TrimSpace(content)
}

func extractBraces(response string) string {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end < start {
		return response
	}
	return strings.TrimSpace(response[start : end+1])
}
