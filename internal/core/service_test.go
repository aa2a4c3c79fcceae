package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

// stubAI is a scripted AIClient for arbitration tests
type stubAI struct {
	verdict *EngineVerdict
	err     error
	delay   time.Duration
	calls   int
}

func (s *stubAI) ClassifyEmail(ctx context.Context, email *Email) (*EngineVerdict, error) {
	s.calls++
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.verdict, s.err
}

type stubVIP struct {
	vip bool
}

func (s *stubVIP) IsVIP(from string) bool { return s.vip }

func aiVerdict(intent Intent, priority Priority, confidence float64) *EngineVerdict {
	return &EngineVerdict{
		Intent:            intent,
		Priority:          priority,
		Confidence:        confidence,
		Source:            SourceAI,
		SuggestedResponse: "Thank you for your detailed message, we will follow up shortly.",
		ModelUsed:         "test-model",
		AnalyzedAt:        time.Now(),
	}
}

func newTestService(t *testing.T, ai AIClient, vip VIPChecker, aiEnabled bool, aiTimeout time.Duration) *TriageService {
	t.Helper()
	taxonomy := DefaultTaxonomy()
	rules, err := NewRuleEngine(taxonomy, DefaultTemplates())
	if err != nil {
		t.Fatalf("NewRuleEngine() error = %v", err)
	}
	return NewTriageService(
		NewFeatureExtractor(taxonomy),
		rules,
		NewResponseComposer("Customer Success Team"),
		ai,
		nil,
		nil,
		vip,
		zap.NewNop(),
		aiEnabled,
		aiTimeout,
		0.6,
	)
}

func pricingEmail() *Email {
	return &Email{
		From:    "jane.doe@example.com",
		To:      []string{"support@vendor.com"},
		Subject: "Pricing question",
		Body:    "What does the monthly subscription plan cost?",
	}
}

func TestClassifyValidation(t *testing.T) {
	service := newTestService(t, nil, nil, false, time.Second)

	tests := []struct {
		name  string
		email *Email
	}{
		{"nil email", nil},
		{"empty sender", &Email{Subject: "hi", Body: "hello"}},
		{"malformed sender", &Email{From: "not an address", Subject: "hi", Body: "hello"}},
		{"empty subject and body", &Email{From: "jane@example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := service.Classify(context.Background(), tt.email)
			if !errors.Is(err, ErrInvalidEmail) {
				t.Errorf("err = %v, want ErrInvalidEmail", err)
			}
			if result != nil {
				t.Error("expected nil result for invalid email")
			}
		})
	}
}

func TestClassifyAIDisabled(t *testing.T) {
	ai := &stubAI{verdict: aiVerdict(IntentGeneralInquiry, PriorityNormal, 0.99)}
	service := newTestService(t, ai, nil, false, time.Second)

	result, err := service.Classify(context.Background(), pricingEmail())
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if result.Verdict.Source != SourceRule {
		t.Errorf("Source = %s, want %s", result.Verdict.Source, SourceRule)
	}
	if result.Audit.AIRequested {
		t.Error("AI was consulted while disabled")
	}
	if ai.calls != 0 {
		t.Errorf("AI client called %d times while disabled", ai.calls)
	}
	if result.Audit.SelectionReason != "ai_disabled" {
		t.Errorf("SelectionReason = %q, want %q", result.Audit.SelectionReason, "ai_disabled")
	}
}

func TestClassifyAIConfident(t *testing.T) {
	ai := &stubAI{verdict: aiVerdict(IntentSalesOpportunity, PriorityHigh, 0.92)}
	service := newTestService(t, ai, nil, true, time.Second)

	result, err := service.Classify(context.Background(), pricingEmail())
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if result.Verdict.Source != SourceAI {
		t.Errorf("Source = %s, want %s", result.Verdict.Source, SourceAI)
	}
	if result.Verdict.Intent != IntentSalesOpportunity {
		t.Errorf("Intent = %s, want %s", result.Verdict.Intent, IntentSalesOpportunity)
	}
	if result.Audit.SelectionReason != "ai_confident" {
		t.Errorf("SelectionReason = %q, want %q", result.Audit.SelectionReason, "ai_confident")
	}
}

func TestClassifyAILowConfidence(t *testing.T) {
	ai := &stubAI{verdict: aiVerdict(IntentComplaint, PriorityUrgent, 0.4)}
	service := newTestService(t, ai, nil, true, time.Second)

	result, err := service.Classify(context.Background(), pricingEmail())
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if result.Verdict.Source != SourceRule {
		t.Errorf("Source = %s, want %s", result.Verdict.Source, SourceRule)
	}
	if result.Verdict.Intent != IntentPricingInquiry {
		t.Errorf("Intent = %s, want %s", result.Verdict.Intent, IntentPricingInquiry)
	}
	if result.Audit.SelectionReason != "ai_low_confidence" {
		t.Errorf("SelectionReason = %q, want %q", result.Audit.SelectionReason, "ai_low_confidence")
	}
	// The rejected verdict is still visible in the audit trail
	if result.Audit.AIVerdict == nil || result.Audit.AIVerdict.Intent != IntentComplaint {
		t.Error("rejected AI verdict missing from the audit trail")
	}
}

func TestClassifyAIFailure(t *testing.T) {
	ai := &stubAI{err: errors.New("upstream 503")}
	service := newTestService(t, ai, nil, true, time.Second)

	result, err := service.Classify(context.Background(), pricingEmail())
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if result.Verdict.Source != SourceRule {
		t.Errorf("Source = %s, want %s", result.Verdict.Source, SourceRule)
	}
	if !result.Audit.AIFailed {
		t.Error("AIFailed not set after provider error")
	}
	if result.Audit.AIFailureReason == "" {
		t.Error("AIFailureReason empty after provider error")
	}
	if result.Audit.SelectionReason != "ai_unavailable" {
		t.Errorf("SelectionReason = %q, want %q", result.Audit.SelectionReason, "ai_unavailable")
	}
}

func TestClassifyAIMalformedVerdict(t *testing.T) {
	tests := []struct {
		name    string
		verdict *EngineVerdict
	}{
		{"nil verdict", nil},
		{"unknown intent", aiVerdict("spam", PriorityNormal, 0.9)},
		{"unknown priority", aiVerdict(IntentComplaint, "critical", 0.9)},
		{"confidence above one", aiVerdict(IntentComplaint, PriorityUrgent, 1.5)},
		{"negative confidence", aiVerdict(IntentComplaint, PriorityUrgent, -0.1)},
		{
			"empty suggested response",
			&EngineVerdict{Intent: IntentComplaint, Priority: PriorityUrgent, Confidence: 0.9, Source: SourceAI},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := newTestService(t, &stubAI{verdict: tt.verdict}, nil, true, time.Second)
			result, err := service.Classify(context.Background(), pricingEmail())
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if result.Verdict.Source != SourceRule {
				t.Errorf("Source = %s, want %s", result.Verdict.Source, SourceRule)
			}
			if !result.Audit.AIFailed {
				t.Error("malformed AI verdict not treated as failure")
			}
		})
	}
}

func TestClassifyAITimeout(t *testing.T) {
	ai := &stubAI{
		verdict: aiVerdict(IntentGeneralInquiry, PriorityNormal, 0.99),
		delay:   500 * time.Millisecond,
	}
	service := newTestService(t, ai, nil, true, 20*time.Millisecond)

	start := time.Now()
	result, err := service.Classify(context.Background(), pricingEmail())
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if result.Verdict.Source != SourceRule {
		t.Errorf("Source = %s, want %s after timeout", result.Verdict.Source, SourceRule)
	}
	if !result.Audit.AIFailed {
		t.Error("AIFailed not set after timeout")
	}
	if elapsed > 400*time.Millisecond {
		t.Errorf("Classify blocked for %v, should have abandoned the slow AI call", elapsed)
	}
}

func TestClassifyParentCancellation(t *testing.T) {
	ai := &stubAI{
		verdict: aiVerdict(IntentGeneralInquiry, PriorityNormal, 0.99),
		delay:   time.Minute,
	}
	service := newTestService(t, ai, nil, true, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	result, err := service.Classify(ctx, pricingEmail())
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	// Cancellation abandons the AI wait but still yields the rule verdict
	if result.Verdict.Source != SourceRule {
		t.Errorf("Source = %s, want %s after cancellation", result.Verdict.Source, SourceRule)
	}
}

func TestClassifyUrgentOverrideSurvivesAISelection(t *testing.T) {
	// AI confidently downgrades a legal threat; the urgent flag must survive
	ai := &stubAI{verdict: aiVerdict(IntentGeneralInquiry, PriorityNormal, 0.95)}
	service := newTestService(t, ai, nil, true, time.Second)

	result, err := service.Classify(context.Background(), &Email{
		From:    "angry@example.com",
		Subject: "Final notice",
		Body:    "Resolve this now or my lawyer files the lawsuit on Monday.",
	})
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if result.Verdict.Source != SourceAI {
		t.Errorf("Source = %s, want %s", result.Verdict.Source, SourceAI)
	}
	if result.Verdict.Intent != IntentGeneralInquiry {
		t.Errorf("Intent = %s, want the AI intent", result.Verdict.Intent)
	}
	if result.Verdict.Priority != PriorityUrgent {
		t.Errorf("Priority = %s, want %s", result.Verdict.Priority, PriorityUrgent)
	}
	if !result.Audit.UrgentOverride {
		t.Error("UrgentOverride not recorded")
	}
}

func TestClassifyVIPEscalation(t *testing.T) {
	service := newTestService(t, nil, &stubVIP{vip: true}, false, time.Second)

	result, err := service.Classify(context.Background(), pricingEmail())
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if result.Verdict.Priority != PriorityHigh {
		t.Errorf("Priority = %s, want %s for VIP sender", result.Verdict.Priority, PriorityHigh)
	}
	if !result.Audit.VIPEscalated {
		t.Error("VIPEscalated not recorded")
	}
}

func TestClassifyVIPNeverDowngrades(t *testing.T) {
	service := newTestService(t, nil, &stubVIP{vip: true}, false, time.Second)

	result, err := service.Classify(context.Background(), &Email{
		From:    "vip@bigcustomer.com",
		Subject: "Legal",
		Body:    "Our attorney is preparing a lawsuit.",
	})
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if result.Verdict.Priority != PriorityUrgent {
		t.Errorf("Priority = %s, want %s", result.Verdict.Priority, PriorityUrgent)
	}
	if result.Audit.VIPEscalated {
		t.Error("VIP escalation recorded on an already urgent result")
	}
}

func TestClassifyResultShape(t *testing.T) {
	service := newTestService(t, nil, nil, false, time.Second)

	result, err := service.Classify(context.Background(), pricingEmail())
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if result.ProcessingID == "" {
		t.Error("ProcessingID is empty")
	}
	if result.Sender != "jane.doe@example.com" {
		t.Errorf("Sender = %q", result.Sender)
	}
	if result.Response == "" {
		t.Error("Response is empty")
	}
	if !result.Audit.RuleRan {
		t.Error("RuleRan not recorded")
	}
	if result.ProcessedAt.IsZero() {
		t.Error("ProcessedAt is zero")
	}

	// Two runs of the same email get distinct processing IDs
	second, err := service.Classify(context.Background(), pricingEmail())
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if second.ProcessingID == result.ProcessingID {
		t.Error("ProcessingID reused across classifications")
	}
}
