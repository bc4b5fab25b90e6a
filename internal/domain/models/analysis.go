// internal/domain/models/analysis.go
package models

// Severity/impact/priority tiers used throughout analysis results.
const (
	TierLow    = "Low"
	TierMedium = "Medium"
	TierHigh   = "High"
)

// Trend is a positive pattern identified across AAR sustain items.
type Trend struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	Frequency   int    `json:"frequency"`
	Severity    string `json:"severity"`
}

// FrictionPoint is a recurring issue identified across AAR improve items.
type FrictionPoint struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
}

// Recommendation is a suggested corrective action derived from AAR
// action items.
type Recommendation struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// AnalysisResult is the ephemeral output of AAR analysis. It is returned
// to callers and never persisted.
type AnalysisResult struct {
	Trends          []Trend          `json:"trends"`
	FrictionPoints  []FrictionPoint  `json:"frictionPoints"`
	Recommendations []Recommendation `json:"recommendations"`
}
