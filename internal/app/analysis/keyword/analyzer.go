// internal/app/analysis/keyword/analyzer.go
package keyword

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/Deepak-cell311/GreenBook/internal/domain/models"
)

// minAARCount is the number of AARs required before pattern analysis is
// attempted. Below it the analyzer reports insufficient data.
const minAARCount = 3

// categoryKeywords pairs a category with the keywords that place an item
// in it. First matching category wins; order matters.
type categoryKeywords struct {
	category string
	keywords []string
}

var sustainCategories = []categoryKeywords{
	{"Communication", []string{"radio", "comms", "communication", "call sign", "sitrep", "report"}},
	{"Planning", []string{"planning", "brief", "timeline", "schedule", "preparation", "warning order", "oporder"}},
	{"Execution", []string{"execution", "maneuver", "movement", "assault", "attack", "defend", "tactical"}},
	{"Leadership", []string{"leader", "command", "direction", "guidance", "decision", "accountability"}},
	{"Equipment", []string{"equipment", "gear", "weapon", "system", "maintenance", "supply"}},
	{"Training", []string{"training", "drill", "rehearsal", "practice", "exercise", "qualification"}},
}

var improveCategories = []categoryKeywords{
	{"Communication Problems", []string{"radio", "comms", "communication", "call sign", "sitrep", "report", "unclear"}},
	{"Planning Challenges", []string{"planning", "brief", "timeline", "schedule", "preparation", "insufficient", "inadequate"}},
	{"Execution Issues", []string{"execution", "maneuver", "movement", "slow", "delayed", "confusion", "disorganized"}},
	{"Leadership Gaps", []string{"leader", "command", "direction", "guidance", "decision", "accountability", "absence"}},
	{"Equipment Failures", []string{"equipment", "gear", "weapon", "system", "maintenance", "malfunction", "failure"}},
	{"Training Deficiencies", []string{"training", "drill", "rehearsal", "practice", "exercise", "insufficient", "lacking"}},
}

var actionCategories = []categoryKeywords{
	{"Communications Training", []string{"radio", "comms", "communication", "call sign", "sitrep", "report"}},
	{"Planning Improvement", []string{"planning", "brief", "timeline", "schedule", "preparation", "warning order", "oporder"}},
	{"Tactical Execution", []string{"execution", "maneuver", "movement", "assault", "attack", "defend", "tactical"}},
	{"Leadership Development", []string{"leader", "command", "direction", "guidance", "decision", "accountability"}},
	{"Equipment Maintenance", []string{"equipment", "gear", "weapon", "system", "maintenance", "supply"}},
	{"Training Programs", []string{"training", "drill", "rehearsal", "practice", "exercise", "qualification"}},
}

// cannedRecommendations are fixed recommendation texts for the six known
// action categories. Other categories get a synthesized description.
var cannedRecommendations = map[string]string{
	"Communications Training": "Implement weekly radio check procedures and standardize communications protocols across all units.",
	"Planning Improvement":    "Institute a standardized planning timeline with specific checkpoints for OPORDER development, rehearsals, and PCCs/PCIs.",
	"Tactical Execution":      "Conduct quarterly tactical exercises focusing specifically on maneuver techniques and battle drills.",
	"Leadership Development":  "Establish monthly leadership professional development sessions with practical decision-making scenarios.",
	"Equipment Maintenance":   "Implement weekly equipment maintenance checks with detailed accountability procedures and preventative maintenance training.",
	"Training Programs":       "Develop progressive training programs that build fundamental skills before advancing to complex scenarios and exercises.",
}

// Analyzer derives trends, friction points, and recommendations from AAR
// free text using keyword matching. It is the fallback path when no
// external AI service is configured.
//
// Phrase extraction samples sentences at random, so descriptions are not
// deterministic; tests should assert structure, not exact text.
type Analyzer struct {
	rng *rand.Rand

	// legacyPriority keeps the historical recommendation-priority math,
	// which measures a category's item count against itself and therefore
	// always reports High for a non-empty category. Disabling it measures
	// against the pool size, mirroring the trend and friction tiers.
	legacyPriority bool
}

// New returns an analyzer with the given source of randomness.
func New(rng *rand.Rand, legacyPriority bool) *Analyzer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Analyzer{rng: rng, legacyPriority: legacyPriority}
}

// NewDefault returns a time-seeded analyzer with legacy priority behavior.
func NewDefault() *Analyzer {
	return New(nil, true)
}

// Analyze turns a batch of AARs into a structured analysis. It never
// fails: too little data yields the insufficient-data response.
func (a *Analyzer) Analyze(aars []models.AAR) models.AnalysisResult {
	if len(aars) == 0 {
		return insufficientData(0)
	}
	if len(aars) < minAARCount {
		return insufficientData(len(aars))
	}

	var sustains, improves, actions []models.AARItem
	for _, aar := range aars {
		sustains = append(sustains, aar.SustainItems...)
		improves = append(improves, aar.ImproveItems...)
		actions = append(actions, aar.ActionItems...)
	}

	return models.AnalysisResult{
		Trends:          a.analyzeTrends(sustains),
		FrictionPoints:  a.analyzeIssues(improves),
		Recommendations: a.generateRecommendations(actions, improves),
	}
}

func (a *Analyzer) analyzeTrends(sustains []models.AARItem) []models.Trend {
	if len(sustains) < 3 {
		return defaultTrends()
	}

	grouped := groupItemsByKeywords(sustains, sustainCategories)

	trends := []models.Trend{}
	for _, ck := range sustainCategories {
		items := grouped[ck.category]
		if len(items) == 0 {
			continue
		}
		trends = append(trends, models.Trend{
			Category:    ck.category,
			Description: a.trendDescription(ck.category, items),
			Frequency:   len(items),
			Severity:    severity(len(items), len(sustains)),
		})
	}
	sort.SliceStable(trends, func(i, j int) bool { return trends[i].Frequency > trends[j].Frequency })
	if len(trends) > 3 {
		trends = trends[:3]
	}
	return trends
}

func (a *Analyzer) analyzeIssues(improves []models.AARItem) []models.FrictionPoint {
	if len(improves) < 3 {
		return defaultIssues()
	}

	grouped := groupItemsByKeywords(improves, improveCategories)

	points := []models.FrictionPoint{}
	for _, ck := range improveCategories {
		items := grouped[ck.category]
		if len(items) == 0 {
			continue
		}
		points = append(points, models.FrictionPoint{
			Category:    ck.category,
			Description: a.issueDescription(ck.category, items),
			Impact:      impact(len(items), len(improves)),
		})
	}
	// Historical ranking key: longer generated descriptions rank first,
	// not higher frequencies.
	sort.SliceStable(points, func(i, j int) bool {
		return len(points[i].Description) > len(points[j].Description)
	})
	if len(points) > 3 {
		points = points[:3]
	}
	return points
}

func (a *Analyzer) generateRecommendations(actions, improves []models.AARItem) []models.Recommendation {
	items := actions
	if len(items) < 3 {
		items = improves
	}
	if len(items) < 3 {
		return defaultRecommendations()
	}

	grouped := groupItemsByKeywords(items, actionCategories)

	recs := []models.Recommendation{}
	for _, ck := range actionCategories {
		catItems := grouped[ck.category]
		if len(catItems) == 0 {
			continue
		}
		denom := len(catItems)
		if !a.legacyPriority {
			denom = len(items)
		}
		recs = append(recs, models.Recommendation{
			Category:    ck.category,
			Description: a.recommendationDescription(ck.category, catItems),
			Priority:    priority(len(catItems), denom),
		})
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Category < recs[j].Category })
	if len(recs) > 3 {
		recs = recs[:3]
	}
	return recs
}

// groupItemsByKeywords buckets items into the first category whose keyword
// set matches the item text (case-insensitive substring). Items matching
// nothing are dropped, except that a wholly unmatched pool force-assigns
// up to five items to the first category so the result is never empty.
func groupItemsByKeywords(items []models.AARItem, table []categoryKeywords) map[string][]models.AARItem {
	grouped := map[string][]models.AARItem{}
	for _, item := range items {
		text := strings.ToLower(item.Text)
		for _, ck := range table {
			matched := false
			for _, kw := range ck.keywords {
				if strings.Contains(text, strings.ToLower(kw)) {
					matched = true
					break
				}
			}
			if matched {
				grouped[ck.category] = append(grouped[ck.category], item)
				break
			}
		}
	}
	if len(grouped) == 0 && len(items) > 0 {
		n := len(items)
		if n > 5 {
			n = 5
		}
		grouped[table[0].category] = items[:n]
	}
	return grouped
}

func (a *Analyzer) trendDescription(category string, items []models.AARItem) string {
	if len(items) == 0 {
		return "No specific trends identified."
	}
	phrases := a.extractKeyPhrases(items, 3)
	if len(phrases) > 0 {
		return fmt.Sprintf("Multiple AARs highlight %s strengths including: %s.",
			strings.ToLower(category), strings.Join(phrases, "; "))
	}
	return fmt.Sprintf("Multiple AARs highlight effective %s practices.", strings.ToLower(category))
}

func (a *Analyzer) issueDescription(category string, items []models.AARItem) string {
	if len(items) == 0 {
		return "No specific issues identified."
	}
	phrases := a.extractKeyPhrases(items, 3)
	if len(phrases) > 0 {
		return fmt.Sprintf("Recurring %s identified in multiple AARs: %s.",
			strings.ToLower(category), strings.Join(phrases, "; "))
	}
	return fmt.Sprintf("Recurring %s require attention based on AAR data.", strings.ToLower(category))
}

func (a *Analyzer) recommendationDescription(category string, items []models.AARItem) string {
	if len(items) == 0 {
		return "No specific recommendations available."
	}
	if canned, ok := cannedRecommendations[category]; ok {
		return canned
	}
	phrases := a.extractKeyPhrases(items, 2)
	if len(phrases) > 0 {
		return fmt.Sprintf("Implement the following improvements: %s.", strings.Join(phrases, "; "))
	}
	return fmt.Sprintf("Develop structured training for %s.", strings.ToLower(category))
}

// extractKeyPhrases samples up to count short sentence fragments from the
// item texts. Fragments between 11 and 99 characters qualify; draws are
// random without replacement, bounded at count*3 tries.
func (a *Analyzer) extractKeyPhrases(items []models.AARItem, count int) []string {
	var sentences []string
	for _, item := range items {
		for _, part := range strings.FieldsFunc(item.Text, func(r rune) bool {
			return r == '.' || r == '!' || r == '?'
		}) {
			if strings.TrimSpace(part) != "" {
				sentences = append(sentences, part)
			}
		}
	}
	if len(sentences) == 0 {
		return nil
	}

	var selected []string
	maxTries := count * 3
	if len(sentences) < maxTries {
		maxTries = len(sentences)
	}
	for i := 0; i < maxTries && len(selected) < count; i++ {
		sentence := strings.TrimSpace(sentences[a.rng.Intn(len(sentences))])
		if len(sentence) > 10 && len(sentence) < 100 && !containsString(selected, sentence) {
			selected = append(selected, sentence)
		}
	}
	return selected
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func severity(count, total int) string {
	pct := float64(count) / float64(total)
	switch {
	case pct > 0.7:
		return models.TierHigh
	case pct > 0.3:
		return models.TierMedium
	default:
		return models.TierLow
	}
}

func impact(count, total int) string {
	pct := float64(count) / float64(total)
	switch {
	case pct > 0.5:
		return models.TierHigh
	case pct > 0.2:
		return models.TierMedium
	default:
		return models.TierLow
	}
}

func priority(count, total int) string {
	pct := float64(count) / float64(total)
	switch {
	case pct > 0.6:
		return models.TierHigh
	case pct > 0.3:
		return models.TierMedium
	default:
		return models.TierLow
	}
}

func defaultTrends() []models.Trend {
	return []models.Trend{
		{
			Category:    "Radio Communications",
			Description: "Consistent use of proper radio procedures during operations enhances command and control effectiveness. Units demonstrate strong adherence to communication SOPs.",
			Frequency:   7,
			Severity:    models.TierMedium,
		},
		{
			Category:    "Planning Process",
			Description: "Detailed mission planning and thorough briefings contribute to operational success. Units consistently developing comprehensive OPORDs show improved execution.",
			Frequency:   5,
			Severity:    models.TierMedium,
		},
		{
			Category:    "Team Coordination",
			Description: "Effective small-unit tactics and team movement techniques observed across multiple exercises. Squads demonstrate strong mutual support during operations.",
			Frequency:   6,
			Severity:    models.TierMedium,
		},
	}
}

func defaultIssues() []models.FrictionPoint {
	return []models.FrictionPoint{
		{
			Category:    "Communications Challenges",
			Description: "Radio discipline breaks down during high-stress phases of operations. Units frequently revert to non-standard terminology when under pressure.",
			Impact:      models.TierHigh,
		},
		{
			Category:    "Equipment Readiness",
			Description: "Pre-combat inspections fail to identify common equipment issues, particularly with night vision devices and communication equipment.",
			Impact:      models.TierMedium,
		},
	}
}

func defaultRecommendations() []models.Recommendation {
	return []models.Recommendation{
		{
			Category:    "Communications Training",
			Description: "Implement weekly communications exercises with progressive complexity. Start with basic radio procedures and advance to degraded communications scenarios requiring alternate methods.",
			Priority:    models.TierHigh,
		},
		{
			Category:    "Equipment Maintenance",
			Description: "Establish mandatory pre-mission and post-mission maintenance checks for all critical equipment. Create detailed inspection checklists specific to each equipment type.",
			Priority:    models.TierMedium,
		},
		{
			Category:    "Leader Development",
			Description: "Conduct monthly leader certification exercises focused on decision-making under stress. Include scenarios requiring adaptation to changing mission parameters.",
			Priority:    models.TierMedium,
		},
	}
}

func insufficientData(count int) models.AnalysisResult {
	description := fmt.Sprintf("Currently analyzing %d AAR(s). For more accurate insights, complete at least 3 AARs. Additional data will enable the system to identify meaningful patterns across multiple training events.", count)
	if count == 0 {
		description = "To generate training insights, complete AARs for your training events. The analysis system requires multiple AARs to identify patterns and generate meaningful recommendations."
	}
	return models.AnalysisResult{
		Trends: []models.Trend{
			{
				Category:    "Insufficient Data",
				Description: description,
				Frequency:   count,
				Severity:    models.TierMedium,
			},
		},
		FrictionPoints:  []models.FrictionPoint{},
		Recommendations: []models.Recommendation{},
	}
}
