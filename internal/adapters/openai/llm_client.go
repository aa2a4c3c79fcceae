package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/mailsift/mailsift/internal/core"
	"github.com/mailsift/mailsift/internal/textutil"
)

// defaultConfidence is used when the provider omits a confidence value
const defaultConfidence = 0.8

// OpenAIClient is an implementation of the AIClient interface using OpenAI
type OpenAIClient struct {
	client       *openai.Client
	modelName    string
	maxTokens    int
	temperature  float32
	topP         float32
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

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(
	client *openai.Client,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
) *OpenAIClient {
	return &OpenAIClient{
		client:       client,
		modelName:    modelName,
		maxTokens:    maxTokens,
		temperature:  temperature,
		topP:         topP,
		maxBodySize:  maxBodySize,
		logger:       logger,
		promptFormat: intentPromptFormat,
	}
}

const intentPromptFormat = `You are an email triage assistant for a customer-facing inbox. Classify the following email.
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

Respond only with the JSON object and nothing else.`

// ClassifyEmail classifies an email's intent and priority via OpenAI
func (c *OpenAIClient) ClassifyEmail(ctx context.Context, email *core.Email) (*core.EngineVerdict, error) {
	prompt := fmt.Sprintf(c.promptFormat,
		email.From,
		formatRecipients(email.To),
		email.Subject,
		textutil.Prepare(email.Body, c.maxBodySize))

	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an email triage assistant. Respond only with JSON.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI")
	}

	analysis, err := parseIntentResponse(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	return verdictFromAnalysis(analysis, c.modelName), nil
}

// formatRecipients renders the To list for the prompt
func formatRecipients(to []string) string {
	if len(to) == 0 {
		return ""
	}
	if len(to) == 1 {
		return to[0]
	}
	return fmt.Sprintf("%s and %d others", to[0], len(to)-1)
}

// parseIntentResponse parses the LLM's JSON response, tolerating
// surrounding prose by extracting the outermost JSON object
func parseIntentResponse(responseText string) (*intentAnalysisResponse, error) {
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
	return &analysis, nil
}

// verdictFromAnalysis converts the provider response into an engine
// verdict, defaulting confidence when the provider omits it
func verdictFromAnalysis(analysis *intentAnalysisResponse, modelName string) *core.EngineVerdict {
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
		ModelUsed:         modelName,
		AnalyzedAt:        time.Now(),
	}
}
