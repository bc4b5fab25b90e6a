// internal/app/analysis/venice/venice.go
package venice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Deepak-cell311/GreenBook/internal/domain/models"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Default models for the two analysis paths.
const (
	analysisModel = openai.GPT4o
	promptModel   = openai.GPT3Dot5Turbo
)

const analysisSystemPrompt = "You are GreenBookAAR, a specialized military training analysis system. " +
	"Your role is to extract specific, substantive insights from After Action Reports (AARs). " +
	"Never use generic language about 'trends were found' or 'analysis identified patterns'. " +
	"Instead, provide concise, specific analyses with exact details from the AARs. " +
	"Always focus on what was actually observed and documented, not that information was merely present."

const promptSystemPrompt = "You are an AI analyst for military After Action Reports. " +
	"Analyze the provided AAR data based on the user's specific prompt. " +
	"Format your response in a structured way with sections for Trends, Friction Points, and Recommendations."

// Service calls an OpenAI-compatible chat completions API to analyze AAR
// batches. Every failure path recovers to a fixed default analysis; the
// caller never sees a hard error from this collaborator.
type Service struct {
	client *openai.Client
	model  string
	log    *zap.Logger
}

// New builds a Service. An empty apiKey disables the remote call; the
// service then answers with instructional defaults. apiURL overrides the
// API base (blank means api.openai.com), model overrides the default
// analysis model.
func New(apiKey, apiURL, model string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if model == "" {
		model = analysisModel
	}
	s := &Service{model: model, log: logger}
	if apiKey == "" {
		logger.Warn("openai api key not configured; venice analysis will return instructional defaults")
		return s
	}
	cfg := openai.DefaultConfig(apiKey)
	if apiURL != "" {
		cfg.BaseURL = apiURL
	}
	s.client = openai.NewClientWithConfig(cfg)
	return s
}

// Enabled reports whether a remote API is configured.
func (s *Service) Enabled() bool { return s.client != nil }

// GenerateAnalysis analyzes a batch of AARs through the language model.
// It expects a JSON object shaped like AnalysisResult, falls back to
// labeled-section text parsing, and recovers every transport, quota, or
// parse failure with a fixed default analysis.
func (s *Service) GenerateAnalysis(ctx context.Context, aars []models.AAR) models.AnalysisResult {
	if len(aars) == 0 {
		return insufficientData(0)
	}
	if len(aars) < 3 {
		return insufficientData(len(aars))
	}
	if s.client == nil {
		return defaultAnalysis("AI analysis unavailable. Please check that your OpenAI API key is properly configured.")
	}

	payload, err := json.Marshal(formatAARs(aars))
	if err != nil {
		s.log.Error("venice: marshal AAR payload failed", zap.Error(err))
		return defaultAnalysis("")
	}

	s.log.Info("venice: analyzing AARs", zap.Int("aar_count", len(aars)))
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:          s.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
		Temperature:    0.4,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: analysisSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: analysisUserPrompt(payload)},
		},
	})
	if err != nil {
		return s.recoverAnalysisError(err)
	}
	if len(resp.Choices) == 0 {
		s.log.Warn("venice: empty completion response")
		return defaultAnalysis("")
	}

	return parseAnalysisContent(resp.Choices[0].Message.Content)
}

// GeneratePromptAnalysis analyzes AARs with a user-supplied focus prompt.
// The model answers in labeled TRENDS / FRICTION POINTS / RECOMMENDATIONS
// sections which are parsed back into an AnalysisResult.
func (s *Service) GeneratePromptAnalysis(ctx context.Context, aars []models.AAR, prompt string) models.AnalysisResult {
	s.log.Info("venice: prompt analysis", zap.Int("aar_count", len(aars)), zap.String("prompt", prompt))
	if len(aars) == 0 {
		return models.AnalysisResult{
			Trends:          []models.Trend{},
			FrictionPoints:  []models.FrictionPoint{},
			Recommendations: []models.Recommendation{},
		}
	}
	if s.client == nil {
		return promptDefault(prompt, "API key not found")
	}

	payload, err := json.Marshal(formatAARs(aars))
	if err != nil {
		s.log.Error("venice: marshal AAR payload failed", zap.Error(err))
		return promptDefault(prompt, "")
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       promptModel,
		Temperature: 0.7,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: promptSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: promptUserPrompt(payload, prompt)},
		},
	})
	if err != nil {
		if isQuotaError(err) {
			return promptDefault(prompt, "API quota exceeded. Please try again later.")
		}
		s.log.Error("venice: prompt analysis failed", zap.Error(err))
		return promptDefault(prompt, "")
	}
	if len(resp.Choices) == 0 {
		return promptDefault(prompt, "")
	}

	return ParseAnalysisText(resp.Choices[0].Message.Content)
}

// GenerateCustomAnalysis answers a free-form user prompt over AARs and
// events with plain text content rather than a structured result.
func (s *Service) GenerateCustomAnalysis(ctx context.Context, aars []models.AAR, events []models.Event, userPrompt string) string {
	if len(aars) == 0 && len(events) == 0 {
		return "No data available for analysis. Please participate in events and submit AARs to enable analysis."
	}
	if s.client == nil {
		return "AI analysis requires an OpenAI API key configuration. Please check your environment settings."
	}

	aarPayload, err := json.Marshal(formatAARs(aars))
	if err != nil {
		return fmt.Sprintf("Error generating analysis: %v", err)
	}
	eventPayload, err := json.Marshal(formatEvents(events))
	if err != nil {
		return fmt.Sprintf("Error generating analysis: %v", err)
	}

	s.log.Info("venice: custom analysis",
		zap.Int("aar_count", len(aars)), zap.Int("event_count", len(events)))
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: 0.5,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You are Venice AI, a specialized military training analysis system. Your role is to analyze After Action Reports (AARs) from military training events and respond to specific user queries about the data. Provide thoughtful, evidence-based insights that directly answer the user's question."},
			{Role: openai.ChatMessageRoleUser, Content: customUserPrompt(eventPayload, aarPayload, userPrompt)},
		},
	})
	if err != nil {
		if isQuotaError(err) {
			return "API quota exceeded. Please try again later."
		}
		s.log.Error("venice: custom analysis failed", zap.Error(err))
		return fmt.Sprintf("Error generating analysis: %v", err)
	}
	if len(resp.Choices) == 0 {
		return "Error generating analysis: empty response"
	}
	return resp.Choices[0].Message.Content
}

func (s *Service) recoverAnalysisError(err error) models.AnalysisResult {
	if isQuotaError(err) {
		s.log.Warn("venice: quota exceeded")
		return defaultAnalysis("API quota exceeded. Please try again later.")
	}
	s.log.Error("venice: analysis failed", zap.Error(err))
	return defaultAnalysis("")
}

func isQuotaError(err error) bool {
	var apiErr *openai.APIError
	return errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests
}

// parseAnalysisContent accepts either a JSON object shaped like
// AnalysisResult or labeled free text. Anything unusable falls through to
// the text parser's defaults.
func parseAnalysisContent(content string) models.AnalysisResult {
	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(content), &result); err == nil &&
		(len(result.Trends) > 0 || len(result.FrictionPoints) > 0 || len(result.Recommendations) > 0) {
		clampSections(&result)
		return result
	}
	return ParseAnalysisText(content)
}

func clampSections(r *models.AnalysisResult) {
	if len(r.Trends) > 5 {
		r.Trends = r.Trends[:5]
	}
	if len(r.FrictionPoints) > 5 {
		r.FrictionPoints = r.FrictionPoints[:5]
	}
	if len(r.Recommendations) > 5 {
		r.Recommendations = r.Recommendations[:5]
	}
}

// formattedItem is one AAR observation flattened for the model payload.
type formattedItem struct {
	EventID   string    `json:"eventId"`
	UnitID    string    `json:"unitId"`
	CreatedAt time.Time `json:"createdAt"`
	Type      string    `json:"type"`
	Text      string    `json:"text"`
	Rank      string    `json:"authorRank,omitempty"`
	UnitLevel string    `json:"authorUnitLevel,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Tags      []string  `json:"tags"`
}

type formattedBatch struct {
	Items    []formattedItem `json:"items"`
	Metadata struct {
		TotalAARs int        `json:"total_aars"`
		DateRange struct {
			Start *time.Time `json:"start"`
			End   *time.Time `json:"end"`
		} `json:"date_range"`
	} `json:"metadata"`
}

func formatAARs(aars []models.AAR) formattedBatch {
	var batch formattedBatch
	batch.Items = []formattedItem{}
	for _, aar := range aars {
		appendItems := func(kind string, items []models.AARItem) {
			for _, item := range items {
				tags := item.Tags
				if tags == nil {
					tags = []string{}
				}
				batch.Items = append(batch.Items, formattedItem{
					EventID:   aar.EventID.Hex(),
					UnitID:    aar.UnitID.Hex(),
					CreatedAt: aar.CreatedAt,
					Type:      kind,
					Text:      item.Text,
					Rank:      item.AuthorRank,
					UnitLevel: item.UnitLevel,
					Timestamp: item.CreatedAt,
					Tags:      tags,
				})
			}
		}
		appendItems("sustain", aar.SustainItems)
		appendItems("improve", aar.ImproveItems)
		appendItems("action", aar.ActionItems)
	}
	batch.Metadata.TotalAARs = len(aars)
	if len(aars) > 0 {
		first, last := aars[0].CreatedAt, aars[0].CreatedAt
		for _, aar := range aars[1:] {
			if aar.CreatedAt.Before(first) {
				first = aar.CreatedAt
			}
			if aar.CreatedAt.After(last) {
				last = aar.CreatedAt
			}
		}
		batch.Metadata.DateRange.Start = &first
		batch.Metadata.DateRange.End = &last
	}
	return batch
}

type formattedEvent struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Date       string `json:"date"`
	Step       int    `json:"step"`
	Type       string `json:"type"`
	Objectives string `json:"objectives"`
	Location   string `json:"location"`
	IsMultiDay bool   `json:"isMultiDay"`
	EndDate    string `json:"endDate,omitempty"`
}

func formatEvents(events []models.Event) []formattedEvent {
	out := make([]formattedEvent, 0, len(events))
	for _, ev := range events {
		fe := formattedEvent{
			ID:         ev.ID.Hex(),
			Title:      ev.Title,
			Date:       ev.Date.Format("2006-01-02"),
			Step:       ev.Step,
			Type:       ev.EventType,
			Objectives: ev.Objectives,
			Location:   ev.Location,
			IsMultiDay: ev.IsMultiDayEvent,
		}
		if fe.Title == "" {
			fe.Title = "Untitled Event"
		}
		if fe.Type == "" {
			fe.Type = "Unknown"
		}
		if fe.Objectives == "" {
			fe.Objectives = "No objectives specified"
		}
		if fe.Location == "" {
			fe.Location = "No location specified"
		}
		if ev.EndDate != nil {
			fe.EndDate = ev.EndDate.Format("2006-01-02")
		}
		out = append(out, fe)
	}
	return out
}

func analysisUserPrompt(payload []byte) string {
	return fmt.Sprintf(`Analyze these After Action Reports from military training events: %s.

Extract specific, concrete insights and format your response as a JSON object with exactly these fields:
{
  "trends": [{"category": "...", "description": "...", "frequency": 1, "severity": "Low/Medium/High"}],
  "frictionPoints": [{"category": "...", "description": "...", "impact": "Low/Medium/High"}],
  "recommendations": [{"category": "...", "description": "...", "priority": "Low/Medium/High"}]
}

Guidelines:
1. Provide exactly 3-5 specific insights for each section
2. Each insight must include concrete examples, numbers, and specific details from the AARs
3. Never use phrases like 'analysis showed' or 'trends were identified'
4. Focus on what actually happened, not that something was observed
5. Use precise language that a commander could immediately act upon
6. Base your analysis exclusively on evidence from the AARs, not general assumptions`, payload)
}

func promptUserPrompt(payload []byte, prompt string) string {
	return fmt.Sprintf(`Analyze these After Action Reports: %s.
Focus on this specific prompt: %q.
Provide analysis with 3-5 trends, 2-3 friction points, and 3-5 recommendations. Format as follows:

TRENDS:
1. [Category]: [Description] - Frequency: [Number], Severity: [Low/Medium/High]

FRICTION POINTS:
1. [Category]: [Description] - Impact: [Low/Medium/High]

RECOMMENDATIONS:
1. [Category]: [Description] - Priority: [Low/Medium/High]`, payload, prompt)
}

func customUserPrompt(events, aars []byte, userPrompt string) string {
	return fmt.Sprintf(`I need you to analyze the following data and respond to my prompt.

EVENTS DATA:
%s

AARs DATA:
%s

USER PROMPT:
%s

Based on the provided events and AARs data, respond to my prompt with clear, specific insights. Focus on patterns, trends, and actionable recommendations supported by the data. Keep your response concise, direct, and avoid speculation beyond what the data supports.`, events, aars, userPrompt)
}

// defaultAnalysis is the recovery result for failed or unconfigured AI
// calls. Content is intentionally distinct from the keyword analyzer's
// defaults. A non-empty message replaces the first trend description.
func defaultAnalysis(message string) models.AnalysisResult {
	commDescription := "Inconsistent radio protocols across teams"
	if message != "" {
		commDescription = message
	}
	return models.AnalysisResult{
		Trends: []models.Trend{
			{Category: "Communication", Description: commDescription, Frequency: 7, Severity: models.TierMedium},
			{Category: "Equipment", Description: "Night vision equipment failures in cold weather", Frequency: 3, Severity: models.TierHigh},
			{Category: "Training", Description: "Insufficient urban operations training", Frequency: 5, Severity: models.TierMedium},
		},
		FrictionPoints: []models.FrictionPoint{
			{Category: "Leadership", Description: "Unclear command structure during multi-team operations", Impact: models.TierHigh},
			{Category: "Planning", Description: "Inadequate contingency planning for weather events", Impact: models.TierMedium},
		},
		Recommendations: []models.Recommendation{
			{Category: "Training", Description: "Implement standardized radio protocol training", Priority: models.TierHigh},
			{Category: "Equipment", Description: "Conduct regular equipment maintenance checks", Priority: models.TierMedium},
			{Category: "Planning", Description: "Develop weather contingency plans for operations", Priority: models.TierMedium},
		},
	}
}

func promptDefault(prompt, message string) models.AnalysisResult {
	if message == "" {
		message = "Unable to process your prompt at this time. Please try again later."
	}
	return models.AnalysisResult{
		Trends: []models.Trend{
			{Category: "Prompt Analysis", Description: fmt.Sprintf("Based on your prompt: %q", prompt), Frequency: 0, Severity: models.TierMedium},
		},
		FrictionPoints: []models.FrictionPoint{
			{Category: "Analysis Unavailable", Description: message, Impact: models.TierMedium},
		},
		Recommendations: []models.Recommendation{
			{Category: "System Recommendation", Description: "Try a more specific prompt related to training, equipment, or communication issues.", Priority: models.TierMedium},
		},
	}
}

func insufficientData(count int) models.AnalysisResult {
	description := fmt.Sprintf("Currently analyzing %d AAR(s). For more accurate insights, complete at least 3 AARs. Additional data will enable the AI to identify meaningful patterns across multiple training events.", count)
	if count == 0 {
		description = "To get AI-powered training insights, complete AARs for your training events. The Venice AI system requires multiple AARs to identify patterns and generate meaningful recommendations."
	}
	return models.AnalysisResult{
		Trends: []models.Trend{
			{Category: "Insufficient Data", Description: description, Frequency: count, Severity: models.TierMedium},
		},
		FrictionPoints:  []models.FrictionPoint{},
		Recommendations: []models.Recommendation{},
	}
}
