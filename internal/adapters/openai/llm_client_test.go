package openai

import (
	"testing"

	"github.com/mailsift/mailsift/internal/core"
)

func TestParseIntentResponse(t *testing.T) {
	tests := []struct {
		name       string
		response   string
		wantIntent string
		wantErr    bool
	}{
		{
			name:       "clean json",
			response:   `{"intent": "complaint", "priority": "urgent", "confidence": 0.9, "suggested_response": "We apologize."}`,
			wantIntent: "complaint",
		},
		{
			name:       "json wrapped in prose",
			response:   "Here is the classification:\n```json\n{\"intent\": \"pricing_inquiry\", \"priority\": \"normal\", \"confidence\": 0.7, \"suggested_response\": \"Our plans start at $49.\"}\n```",
			wantIntent: "pricing_inquiry",
		},
		{
			name:     "no json at all",
			response: "I cannot classify this email.",
			wantErr:  true,
		},
		{
			name:     "broken json",
			response: `{"intent": "complaint", "priority":`,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis, err := parseIntentResponse(tt.response)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected parse error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseIntentResponse() error = %v", err)
			}
			if analysis.Intent != tt.wantIntent {
				t.Errorf("Intent = %q, want %q", analysis.Intent, tt.wantIntent)
			}
		})
	}
}

func TestVerdictFromAnalysis(t *testing.T) {
	conf := 0.95
	verdict := verdictFromAnalysis(&intentAnalysisResponse{
		Intent:            "  Complaint ",
		Priority:          "URGENT",
		Confidence:        &conf,
		SuggestedResponse: "We apologize.",
	}, "gpt-4")

	if verdict.Intent != core.IntentComplaint {
		t.Errorf("Intent = %q, want %q", verdict.Intent, core.IntentComplaint)
	}
	if verdict.Priority != core.PriorityUrgent {
		t.Errorf("Priority = %q, want %q", verdict.Priority, core.PriorityUrgent)
	}
	if verdict.Confidence != 0.95 {
		t.Errorf("Confidence = %f, want 0.95", verdict.Confidence)
	}
	if verdict.Source != core.SourceAI {
		t.Errorf("Source = %q, want %q", verdict.Source, core.SourceAI)
	}
	if verdict.ModelUsed != "gpt-4" {
		t.Errorf("ModelUsed = %q", verdict.ModelUsed)
	}
}

func TestVerdictFromAnalysisDefaultConfidence(t *testing.T) {
	verdict := verdictFromAnalysis(&intentAnalysisResponse{
		Intent:            "support_request",
		Priority:          "normal",
		SuggestedResponse: "Our team is on it.",
	}, "gpt-4")

	if verdict.Confidence != defaultConfidence {
		t.Errorf("Confidence = %f, want the %0.1f default", verdict.Confidence, defaultConfidence)
	}
}

func TestFormatRecipients(t *testing.T) {
	tests := []struct {
		name string
		to   []string
		want string
	}{
		{"empty", nil, ""},
		{"single", []string{"support@vendor.com"}, "support@vendor.com"},
		{"multiple", []string{"support@vendor.com", "sales@vendor.com", "ceo@vendor.com"}, "support@vendor.com and 2 others"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatRecipients(tt.to); got != tt.want {
				t.Errorf("formatRecipients(%v) = %q, want %q", tt.to, got, tt.want)
			}
		})
	}
}
