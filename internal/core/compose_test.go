package core

import (
	"strings"
	"testing"
)

func TestComposeGreeting(t *testing.T) {
	composer := NewResponseComposer("Customer Success Team")

	tests := []struct {
		name string
		from string
		want string
	}{
		{"dotted local part", "jane.doe@example.com", "Dear Jane Doe,"},
		{"underscore local part", "john_smith@example.com", "Dear John Smith,"},
		{"hyphenated local part", "mary-ann@example.com", "Dear Mary Ann,"},
		{"plain local part", "bob@example.com", "Dear Bob,"},
		{"empty sender falls back", "", "Dear Customer,"},
	}

	verdict := &EngineVerdict{
		Priority:          PriorityNormal,
		SuggestedResponse: "Thank you for your message.",
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			response := composer.Compose(&Email{From: tt.from}, verdict)
			if !strings.HasPrefix(response, tt.want) {
				t.Errorf("response starts with %q, want %q", firstLine(response), tt.want)
			}
		})
	}
}

func TestComposeUrgentTone(t *testing.T) {
	composer := NewResponseComposer("Customer Success Team")
	email := &Email{From: "jane@example.com"}

	urgent := composer.Compose(email, &EngineVerdict{
		Priority:          PriorityUrgent,
		SuggestedResponse: "Your case has been escalated.",
	})
	normal := composer.Compose(email, &EngineVerdict{
		Priority:          PriorityNormal,
		SuggestedResponse: "Thank you for your message.",
	})

	if strings.Contains(urgent, "I hope this message finds you well") {
		t.Error("urgent response contains small talk")
	}
	if !strings.Contains(normal, "I hope this message finds you well") {
		t.Error("normal response is missing the opening pleasantry")
	}
	if !strings.HasSuffix(urgent, "Sincerely,\nCustomer Success Team") {
		t.Errorf("urgent response sign-off wrong:\n%s", urgent)
	}
	if !strings.HasSuffix(normal, "Best regards,\nCustomer Success Team") {
		t.Errorf("normal response sign-off wrong:\n%s", normal)
	}
}

func TestComposeIncludesTemplateBody(t *testing.T) {
	composer := NewResponseComposer("Support Desk")
	response := composer.Compose(
		&Email{From: "jane@example.com"},
		&EngineVerdict{
			Priority:          PriorityHigh,
			SuggestedResponse: "  Our technical team is investigating.  ",
		},
	)

	if !strings.Contains(response, "Our technical team is investigating.") {
		t.Errorf("response missing template body:\n%s", response)
	}
	if strings.Contains(response, "  Our technical team") {
		t.Error("template body was not trimmed")
	}
	if !strings.Contains(response, "Support Desk") {
		t.Error("response missing the configured signature")
	}
}

func TestComposeDefaultSignature(t *testing.T) {
	composer := NewResponseComposer("")
	response := composer.Compose(
		&Email{From: "jane@example.com"},
		&EngineVerdict{Priority: PriorityNormal, SuggestedResponse: "Thanks."},
	)
	if !strings.Contains(response, "Customer Success Team") {
		t.Error("empty signature did not fall back to the default")
	}
}

func firstLine(s string) string {
	if i := strings.Index(s, "\n"); i >= 0 {
		return s[:i]
	}
	return s
}
