package venice

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Deepak-cell311/GreenBook/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const sampleResponse = `TRENDS:
1. Radio Communication Failures: Squad elements lost contact during building clearing in 7 of 10 runs - Frequency: 7, Severity: High
2. Night Operation Challenges: Teams without NVGs took twice as long to clear objectives - Frequency: 4, Severity: Medium
3. Rehearsal Payoff: Platoons that ran full rehearsals hit every phase line on time - Frequency: 5, Severity: Low

FRICTION POINTS:
1. Insufficient Night Vision Equipment: Only 6 of 24 members had working NVGs - Impact: High
2. Conflicting Command Priorities: Two company orders arrived with different timelines - Impact: Medium

RECOMMENDATIONS:
1. Standardize Pre-Mission Radio Checks: Establish a 15-minute radio check protocol - Priority: High
2. Rotate Night Operation Equipment: Pool NVGs across teams by phase - Priority: Medium
3. Implement Squad Leader Decision Exercises: Monthly decision games under stress - Priority: Low`

func TestParseAnalysisText_Sections(t *testing.T) {
	result := ParseAnalysisText(sampleResponse)

	if len(result.Trends) != 3 {
		t.Fatalf("trends: got %d, want 3", len(result.Trends))
	}
	if got := result.Trends[0].Category; got != "Radio Communication Failures" {
		t.Errorf("trend category: got %q", got)
	}
	if got := result.Trends[0].Frequency; got != 7 {
		t.Errorf("trend frequency: got %d, want 7", got)
	}
	if got := result.Trends[0].Severity; got != models.TierHigh {
		t.Errorf("trend severity: got %q, want High", got)
	}
	if got := result.Trends[2].Severity; got != models.TierLow {
		t.Errorf("trend severity: got %q, want Low", got)
	}

	if len(result.FrictionPoints) != 2 {
		t.Fatalf("friction points: got %d, want 2", len(result.FrictionPoints))
	}
	if got := result.FrictionPoints[0].Impact; got != models.TierHigh {
		t.Errorf("friction impact: got %q, want High", got)
	}
	if got := result.FrictionPoints[0].Category; got != "Insufficient Night Vision Equipment" {
		t.Errorf("friction category: got %q", got)
	}

	if len(result.Recommendations) != 3 {
		t.Fatalf("recommendations: got %d, want 3", len(result.Recommendations))
	}
	if got := result.Recommendations[2].Priority; got != models.TierLow {
		t.Errorf("recommendation priority: got %q, want Low", got)
	}
}

func TestParseAnalysisText_EmptyInputGetsGenericEntries(t *testing.T) {
	result := ParseAnalysisText("the model rambled with no labeled sections")

	if len(result.Trends) != 1 || result.Trends[0].Category != "General Trend" {
		t.Errorf("trends: got %+v", result.Trends)
	}
	if len(result.FrictionPoints) != 1 || result.FrictionPoints[0].Category != "General Issue" {
		t.Errorf("friction points: got %+v", result.FrictionPoints)
	}
	if len(result.Recommendations) != 1 || result.Recommendations[0].Category != "Training Improvement" {
		t.Errorf("recommendations: got %+v", result.Recommendations)
	}
}

func TestParseAnalysisText_EntryWithoutColonKeepsDefaultCategory(t *testing.T) {
	text := "TRENDS:\n1. no category marker here at all\n"
	result := ParseAnalysisText(text)
	if result.Trends[0].Category != "General Trend" {
		t.Errorf("category: got %q, want General Trend", result.Trends[0].Category)
	}
	if !strings.Contains(result.Trends[0].Description, "no category marker") {
		t.Errorf("description: got %q", result.Trends[0].Description)
	}
}

func TestParseAnalysisText_CapsAtFiveEntries(t *testing.T) {
	var b strings.Builder
	b.WriteString("TRENDS:\n")
	for i := 1; i <= 8; i++ {
		b.WriteString("1. Category: something observed - Frequency: 2, Severity: Low\n")
	}
	result := ParseAnalysisText(b.String())
	if len(result.Trends) != 5 {
		t.Errorf("trends: got %d, want 5", len(result.Trends))
	}
}

func TestParseAnalysisContent_JSONObject(t *testing.T) {
	content := `{"trends":[{"category":"Breach Timing","description":"Entry teams beat the 30s standard","frequency":4,"severity":"Low"}],"frictionPoints":[],"recommendations":[]}`
	result := parseAnalysisContent(content)
	if len(result.Trends) != 1 || result.Trends[0].Category != "Breach Timing" {
		t.Errorf("json content not parsed: %+v", result)
	}
}

func TestGenerateAnalysis_NoAARs(t *testing.T) {
	svc := New("", "", "", zap.NewNop())
	result := svc.GenerateAnalysis(context.Background(), nil)
	if len(result.Trends) != 1 || result.Trends[0].Category != "Insufficient Data" {
		t.Fatalf("got %+v", result.Trends)
	}
	if result.Trends[0].Frequency != 0 {
		t.Errorf("frequency: got %d, want 0", result.Trends[0].Frequency)
	}
}

func TestGenerateAnalysis_BelowThresholdCarriesCount(t *testing.T) {
	svc := New("", "", "", zap.NewNop())
	aars := []models.AAR{{ID: primitive.NewObjectID()}, {ID: primitive.NewObjectID()}}
	result := svc.GenerateAnalysis(context.Background(), aars)
	if result.Trends[0].Frequency != 2 {
		t.Errorf("frequency: got %d, want 2", result.Trends[0].Frequency)
	}
}

func TestGenerateAnalysis_DisabledFallsBackToDefaults(t *testing.T) {
	svc := New("", "", "", zap.NewNop())
	aars := []models.AAR{{}, {}, {}}
	result := svc.GenerateAnalysis(context.Background(), aars)

	if len(result.Trends) != 3 {
		t.Fatalf("trends: got %d, want 3", len(result.Trends))
	}
	if !strings.Contains(result.Trends[0].Description, "OpenAI API key") {
		t.Errorf("expected key-configuration message, got %q", result.Trends[0].Description)
	}
	if len(result.FrictionPoints) != 2 || len(result.Recommendations) != 3 {
		t.Error("expected the full default analysis shape")
	}
}

func TestGeneratePromptAnalysis_NoAARsEmptyResult(t *testing.T) {
	svc := New("", "", "", zap.NewNop())
	result := svc.GeneratePromptAnalysis(context.Background(), nil, "focus on radios")
	if len(result.Trends) != 0 || len(result.FrictionPoints) != 0 || len(result.Recommendations) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}

func TestGeneratePromptAnalysis_DisabledEchoesPrompt(t *testing.T) {
	svc := New("", "", "", zap.NewNop())
	aars := []models.AAR{{}}
	result := svc.GeneratePromptAnalysis(context.Background(), aars, "focus on radios")
	if len(result.Trends) != 1 {
		t.Fatalf("trends: got %d", len(result.Trends))
	}
	if !strings.Contains(result.Trends[0].Description, "focus on radios") {
		t.Errorf("prompt not echoed: %q", result.Trends[0].Description)
	}
	if !strings.Contains(result.FrictionPoints[0].Description, "API key not found") {
		t.Errorf("reason not carried: %q", result.FrictionPoints[0].Description)
	}
}

func TestGenerateCustomAnalysis_NoData(t *testing.T) {
	svc := New("", "", "", zap.NewNop())
	content := svc.GenerateCustomAnalysis(context.Background(), nil, nil, "how did we do")
	if !strings.Contains(content, "No data available") {
		t.Errorf("got %q", content)
	}
}

func TestFormatAARs_FlattensAndDates(t *testing.T) {
	now := time.Now().UTC()
	earlier := now.Add(-48 * time.Hour)
	aars := []models.AAR{
		{
			EventID:      primitive.NewObjectID(),
			UnitID:       primitive.NewObjectID(),
			CreatedAt:    now,
			SustainItems: []models.AARItem{{Text: "radio up"}},
			ImproveItems: []models.AARItem{{Text: "slow movement"}},
			ActionItems:  []models.AARItem{{Text: "rehearse more"}},
		},
		{
			EventID:      primitive.NewObjectID(),
			UnitID:       primitive.NewObjectID(),
			CreatedAt:    earlier,
			SustainItems: []models.AARItem{{Text: "good brief"}},
		},
	}

	batch := formatAARs(aars)

	if len(batch.Items) != 4 {
		t.Fatalf("items: got %d, want 4", len(batch.Items))
	}
	if batch.Items[0].Type != "sustain" || batch.Items[1].Type != "improve" || batch.Items[2].Type != "action" {
		t.Errorf("item types out of order: %+v", batch.Items[:3])
	}
	if batch.Metadata.TotalAARs != 2 {
		t.Errorf("total_aars: got %d", batch.Metadata.TotalAARs)
	}
	if batch.Metadata.DateRange.Start == nil || !batch.Metadata.DateRange.Start.Equal(earlier) {
		t.Error("date range start should be the earliest AAR")
	}
	if batch.Metadata.DateRange.End == nil || !batch.Metadata.DateRange.End.Equal(now) {
		t.Error("date range end should be the latest AAR")
	}
}
