// internal/app/analysis/venice/parse.go
package venice

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Deepak-cell311/GreenBook/internal/domain/models"
)

var (
	sectionSplitRe = regexp.MustCompile(`FRICTION POINTS:|RECOMMENDATIONS:`)
	numberedRe     = regexp.MustCompile(`\d+\.`)
	frictionRe     = regexp.MustCompile(`(?s)FRICTION POINTS:(.*?)(?:RECOMMENDATIONS:|$)`)
	recsRe         = regexp.MustCompile(`(?s)RECOMMENDATIONS:(.*)$`)
	digitsRe       = regexp.MustCompile(`\d+`)
)

// ParseAnalysisText converts labeled free text into an AnalysisResult.
//
// Expected shape per section: a "TRENDS:" / "FRICTION POINTS:" /
// "RECOMMENDATIONS:" header followed by numbered entries of the form
// "1. Category: Description - Frequency: 4, Severity: High". Each section
// keeps at most five entries; an empty section gets a single generic
// entry so the result is never hollow.
func ParseAnalysisText(text string) models.AnalysisResult {
	analysis := models.AnalysisResult{
		Trends:          []models.Trend{},
		FrictionPoints:  []models.FrictionPoint{},
		Recommendations: []models.Recommendation{},
	}

	trendsSection := sectionSplitRe.Split(text, -1)[0]
	if strings.Contains(trendsSection, "TRENDS:") {
		body := strings.SplitN(trendsSection, "TRENDS:", 2)[1]
		for _, entry := range splitNumbered(body) {
			analysis.Trends = append(analysis.Trends, parseTrend(entry))
			if len(analysis.Trends) == 5 {
				break
			}
		}
	}

	if m := frictionRe.FindStringSubmatch(text); m != nil {
		for _, entry := range splitNumbered(m[1]) {
			analysis.FrictionPoints = append(analysis.FrictionPoints, parseFrictionPoint(entry))
			if len(analysis.FrictionPoints) == 5 {
				break
			}
		}
	}

	if m := recsRe.FindStringSubmatch(text); m != nil {
		for _, entry := range splitNumbered(m[1]) {
			analysis.Recommendations = append(analysis.Recommendations, parseRecommendation(entry))
			if len(analysis.Recommendations) == 5 {
				break
			}
		}
	}

	if len(analysis.Trends) == 0 {
		analysis.Trends = append(analysis.Trends, models.Trend{
			Category:    "General Trend",
			Description: "Analysis identified patterns in the training data",
			Frequency:   1,
			Severity:    models.TierMedium,
		})
	}
	if len(analysis.FrictionPoints) == 0 {
		analysis.FrictionPoints = append(analysis.FrictionPoints, models.FrictionPoint{
			Category:    "General Issue",
			Description: "Analysis identified challenges in training execution",
			Impact:      models.TierMedium,
		})
	}
	if len(analysis.Recommendations) == 0 {
		analysis.Recommendations = append(analysis.Recommendations, models.Recommendation{
			Category:    "Training Improvement",
			Description: "Consider implementing standardized protocols for training sessions",
			Priority:    models.TierMedium,
		})
	}

	return analysis
}

func splitNumbered(body string) []string {
	var entries []string
	for _, part := range numberedRe.Split(strings.TrimSpace(body), -1) {
		if strings.TrimSpace(part) != "" {
			entries = append(entries, part)
		}
	}
	return entries
}

// splitEntry pulls the category (before the first colon), description,
// and the trailing "- metric" segment out of a numbered entry.
func splitEntry(entry, fallbackCategory string) (category, description, meta string) {
	category = fallbackCategory
	description = strings.TrimSpace(entry)

	if strings.Contains(entry, ":") {
		parts := strings.SplitN(entry, ":", 2)
		category = strings.TrimSpace(parts[0])
		description = strings.TrimSpace(parts[1])
	}
	if dashParts := strings.Split(entry, "-"); len(dashParts) > 1 {
		meta = dashParts[len(dashParts)-1]
	}
	return category, description, meta
}

func tierFrom(meta string) string {
	lower := strings.ToLower(meta)
	switch {
	case strings.Contains(lower, "high"):
		return models.TierHigh
	case strings.Contains(lower, "low"):
		return models.TierLow
	default:
		return models.TierMedium
	}
}

func parseTrend(entry string) models.Trend {
	trend := models.Trend{
		Category:  "General Trend",
		Frequency: 1,
		Severity:  models.TierMedium,
	}
	category, description, meta := splitEntry(entry, trend.Category)
	trend.Category = category
	trend.Description = description

	if meta != "" {
		metaParts := strings.Split(meta, ",")
		if strings.Contains(strings.ToLower(metaParts[0]), "frequency") {
			if m := digitsRe.FindString(metaParts[0]); m != "" {
				if n, err := strconv.Atoi(m); err == nil {
					trend.Frequency = n
				}
			}
		}
		if len(metaParts) > 1 && strings.Contains(strings.ToLower(metaParts[1]), "severity") {
			trend.Severity = tierFrom(metaParts[1])
		}
	}
	return trend
}

func parseFrictionPoint(entry string) models.FrictionPoint {
	point := models.FrictionPoint{
		Category: "Friction Point",
		Impact:   models.TierMedium,
	}
	category, description, meta := splitEntry(entry, point.Category)
	point.Category = category
	point.Description = description
	if strings.Contains(strings.ToLower(meta), "impact") {
		point.Impact = tierFrom(meta)
	}
	return point
}

func parseRecommendation(entry string) models.Recommendation {
	rec := models.Recommendation{
		Category: "Recommendation",
		Priority: models.TierMedium,
	}
	category, description, meta := splitEntry(entry, rec.Category)
	rec.Category = category
	rec.Description = description
	if strings.Contains(strings.ToLower(meta), "priority") {
		rec.Priority = tierFrom(meta)
	}
	return rec
}
