package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"

	"github.com/mailsift/mailsift/internal/core"
	"github.com/mailsift/mailsift/internal/textutil"
)

const defaultConfidence = 0.8

// GeminiClient is an implementation of the AIClient interface using Google Gemini
type GeminiClient struct {
	client       *genai.Client
	model        *genai.GenerativeModel
	modelName    string
	maxBodySize  int
	logger       *zap.Logger
	promptFormat string
}

// intentAnalysisResponse represents the structured response from the LLM
type intentAnalysisResponse struct {
	Intent            string   `json:"intent"`
	Priority          string   `json:"priority"`
	Confidence        *float64 `json:"confidence"`
	SuggestedResponse string   `json:"suggested_response"`
}

// NewGeminiClient creates a new Gemini client around an initialized genai
// client
func NewGeminiClient(
	client *genai.Client,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
) *GeminiClient {
	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))

	return &GeminiClient{
		client:      client,
		model:       model,
		modelName:   modelName,
		maxBodySize: maxBodySize,
		logger:      logger,
		promptFormat: `You are an email triage assistant for a customer-facing inbox. Classify the following email.
Respond with a JSON object containing:
- intent: one of "complaint", "sales_opportunity", "support_request", "pricing_inquiry", "general_inquiry"
- priority: one of "urgent", "high", "normal"
- confidence: number between 0 and 1 (how confident you are in the classification)
- suggested_response: string (a short professional reply to the sender)

Email:
From: %s
To: %s
Subject: %s
Body:
%s

Respond only with the JSON object and nothing else.`,
	}
}

// Close closes the Gemini client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// ClassifyEmail classifies an email's intent and priority via Gemini
func (c *GeminiClient) ClassifyEmail(ctx context.Context, email *core.Email) (*core.EngineVerdict, error) {
	to := ""
	if len(email.To) > 0 {
		to = email.To[0]
		if len(email.To) > 1 {
			to += fmt.Sprintf(" and %d others", len(email.To)-1)
		}
	}

	prompt := fmt.Sprintf(c.promptFormat,
		email.From, to, email.Subject,
		textutil.Prepare(email.Body, c.maxBodySize))

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with Gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	responseText := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])

	var analysis intentAnalysisResponse
	if err := json.Unmarshal([]byte(responseText), &analysis); err != nil {
		jsonStart := strings.Index(responseText, "{")
		jsonEnd := strings.LastIndex(responseText, "}")
		if jsonStart < 0 || jsonEnd <= jsonStart {
			return nil, fmt.Errorf("failed to extract JSON from LLM response: %w", err)
		}
		if err := json.Unmarshal([]byte(responseText[jsonStart:jsonEnd+1]), &analysis); err != nil {
			return nil, fmt.Errorf("failed to parse LLM response as JSON: %w", err)
		}
	}

	confidence := defaultConfidence
	if analysis.Confidence != nil {
		confidence = *analysis.Confidence
	}

	return &core.EngineVerdict{
		Intent:            core.Intent(strings.ToLower(strings.TrimSpace(analysis.Intent))),
		Priority:          core.Priority(strings.ToLower(strings.TrimSpace(analysis.Priority))),
		Confidence:        confidence,
		Source:            core.SourceAI,
		SuggestedResponse: analysis.SuggestedResponse,
		ModelUsed:         c.modelName,
		AnalyzedAt:        time.Now(),
	}, nil
}
