package core

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ResponseComposer renders the final reply text from the selected verdict.
// Composition is pure, deterministic and side-effect free.
type ResponseComposer struct {
	signature string
	titler    cases.Caser
}

// NewResponseComposer creates a composer signing replies with the given
// team name
func NewResponseComposer(signature string) *ResponseComposer {
	if signature == "" {
		signature = "Customer Success Team"
	}
	return &ResponseComposer{
		signature: signature,
		titler:    cases.Title(language.English),
	}
}

// Compose applies the greeting, tone and signature around the verdict's
// suggested response. Urgent replies omit small talk.
func (c *ResponseComposer) Compose(email *Email, verdict *EngineVerdict) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Dear %s,\n\n", c.senderName(email.From))

	if verdict.Priority != PriorityUrgent {
		b.WriteString("I hope this message finds you well.\n\n")
	}

	b.WriteString(strings.TrimSpace(verdict.SuggestedResponse))

	if verdict.Priority == PriorityUrgent {
		fmt.Fprintf(&b, "\n\nSincerely,\n%s", c.signature)
	} else {
		fmt.Fprintf(&b, "\n\nBest regards,\n%s", c.signature)
	}

	return b.String()
}

// senderName derives a display name from the local part of the sender
// address, e.g. "jane.doe@example.com" -> "Jane Doe"
func (c *ResponseComposer) senderName(from string) string {
	local := from
	if at := strings.Index(from, "@"); at > 0 {
		local = from[:at]
	}
	local = strings.NewReplacer(".", " ", "_", " ", "-", " ").Replace(local)
	local = strings.TrimSpace(local)
	if local == "" {
		return "Customer"
	}
	return c.titler.String(local)
}
