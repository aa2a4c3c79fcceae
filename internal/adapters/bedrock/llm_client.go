package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"

	"github.com/mailsift/mailsift/internal/core"
	"github.com/mailsift/mailsift/internal/textutil"
)

const defaultConfidence = 0.8

// BedrockClient is an implementation of the AIClient interface using Amazon Bedrock
type BedrockClient struct {
	client       *bedrockruntime.Client
	modelID      string
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

// NewBedrockClient creates a new Bedrock client
func NewBedrockClient(
	client *bedrockruntime.Client,
	modelID string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
) *BedrockClient {
	return &BedrockClient{
		client:      client,
		modelID:     modelID,
		maxTokens:   maxTokens,
		temperature: temperature,
		topP:        topP,
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

// isAnthropicModel checks if the model is an Anthropic Claude model
func (c *BedrockClient) isAnthropicModel() bool {
	return strings.HasPrefix(c.modelID, "anthropic.")
}

// isAmazonTitanModel checks if the model is an Amazon Titan model
func (c *BedrockClient) isAmazonTitanModel() bool {
	return strings.HasPrefix(c.modelID, "amazon.titan")
}

// ClassifyEmail classifies an email's intent and priority via Bedrock
func (c *BedrockClient) ClassifyEmail(ctx context.Context, email *core.Email) (*core.EngineVerdict, error) {
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

	var payload []byte
	var err error

	if c.isAnthropicModel() {
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":               fmt.Sprintf("\n\nHuman: %s\n\nAssistant:", prompt),
			"max_tokens_to_sample": c.maxTokens,
			"temperature":          c.temperature,
			"top_p":                c.topP,
		})
	} else if c.isAmazonTitanModel() {
		payload, err = json.Marshal(map[string]interface{}{
			"inputText": prompt,
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": c.maxTokens,
				"temperature":   c.temperature,
				"topP":          c.topP,
			},
		})
	} else {
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":      prompt,
			"max_tokens":  c.maxTokens,
			"temperature": c.temperature,
			"top_p":       c.topP,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	resp, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &c.modelID,
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	responseText, err := c.extractResponseText(resp.Body)
	if err != nil {
		return nil, err
	}

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
		ModelUsed:         c.modelID,
		AnalyzedAt:        time.Now(),
	}, nil
}

// extractResponseText pulls the generated text out of the model-specific
// response envelope
func (c *BedrockClient) extractResponseText(body []byte) (string, error) {
	if c.isAnthropicModel() {
		var claudeResp struct {
			Completion string `json:"completion"`
		}
		if err := json.Unmarshal(body, &claudeResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Claude response: %w", err)
		}
		return claudeResp.Completion, nil
	}

	if c.isAmazonTitanModel() {
		var titanResp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(body, &titanResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Titan response: %w", err)
		}
		if len(titanResp.Results) == 0 {
			return "", fmt.Errorf("empty response from Titan model")
		}
		return titanResp.Results[0].OutputText, nil
	}

	var genericResp struct {
		Text       string `json:"text"`
		Completion string `json:"completion"`
		Output     string `json:"output"`
	}
	if err := json.Unmarshal(body, &genericResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal model response: %w", err)
	}
	for _, candidate := range []string{genericResp.Text, genericResp.Completion, genericResp.Output} {
		if candidate != "" {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no text found in model response")
}
