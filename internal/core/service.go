package core

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// VIPChecker reports whether a sender belongs to a VIP customer domain
type VIPChecker interface {
	IsVIP(from string) bool
}

// TriageService is the arbitration layer. It owns the uptime guarantee:
// every well-formed email yields exactly one ClassificationResult, even
// when every optional dependency is down.
type TriageService struct {
	extractor       *FeatureExtractor
	rules           *RuleEngine
	composer        *ResponseComposer
	ai              AIClient // optional, may be nil
	store           ResultStore
	metrics         MetricsSink
	vip             VIPChecker
	logger          *zap.Logger
	aiEnabled       bool
	aiTimeout       time.Duration
	acceptThreshold float64
}

// NewTriageService creates the classification service. The AI client,
// store, metrics sink and VIP checker may each be nil; the rule path never
// depends on them.
func NewTriageService(
	extractor *FeatureExtractor,
	rules *RuleEngine,
	composer *ResponseComposer,
	ai AIClient,
	store ResultStore,
	metrics MetricsSink,
	vip VIPChecker,
	logger *zap.Logger,
	aiEnabled bool,
	aiTimeout time.Duration,
	acceptThreshold float64,
) *TriageService {
	return &TriageService{
		extractor:       extractor,
		rules:           rules,
		composer:        composer,
		ai:              ai,
		store:           store,
		metrics:         metrics,
		vip:             vip,
		logger:          logger,
		aiEnabled:       aiEnabled,
		aiTimeout:       aiTimeout,
		acceptThreshold: acceptThreshold,
	}
}

// ValidateEmail rejects malformed messages before they reach the feature
// extractor. Validation failures wrap ErrInvalidEmail.
func ValidateEmail(email *Email) error {
	if email == nil {
		return ErrInvalidEmail
	}
	if email.From == "" {
		return fmt.Errorf("%w: empty sender", ErrInvalidEmail)
	}
	if _, err := mail.ParseAddress(email.From); err != nil {
		return fmt.Errorf("%w: malformed sender %q", ErrInvalidEmail, email.From)
	}
	if email.Subject == "" && email.Body == "" {
		return fmt.Errorf("%w: empty subject and body", ErrInvalidEmail)
	}
	return nil
}

// Classify runs both engines, arbitrates between their verdicts and
// composes the final response. The only error it can return is
// ErrInvalidEmail; every backend failure degrades to the rule verdict.
func (s *TriageService) Classify(ctx context.Context, email *Email) (*ClassificationResult, error) {
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}

	start := time.Now()
	sig := s.extractor.Extract(email)
	ruleVerdict := s.rules.Classify(sig)

	audit := AuditTrail{RuleRan: true}
	selected := ruleVerdict

	if s.aiEnabled && s.ai != nil {
		audit.AIRequested = true
		aiVerdict, err := s.consultAI(ctx, email)
		if err != nil {
			audit.AIFailed = true
			audit.AIFailureReason = err.Error()
			audit.SelectionReason = "ai_unavailable"
			s.logger.Warn("AI engine unavailable, falling back to rules",
				zap.String("sender", email.From),
				zap.Error(err))
		} else {
			audit.AIVerdict = aiVerdict
			if aiVerdict.Confidence >= s.acceptThreshold {
				selected = aiVerdict
				audit.SelectionReason = "ai_confident"
			} else {
				// Low-confidence AI output never overrides the rules
				audit.SelectionReason = "ai_low_confidence"
			}
		}
	} else {
		audit.SelectionReason = "ai_disabled"
	}

	final := *selected

	// The legal-threat urgent flag survives arbitration unconditionally,
	// even when the intent and response come from the AI
	if sig.HasLegalThreat && ruleVerdict.Priority == PriorityUrgent && final.Priority != PriorityUrgent {
		final.Priority = PriorityUrgent
		audit.UrgentOverride = true
	}

	if s.vip != nil && s.vip.IsVIP(email.From) && final.Priority == PriorityNormal {
		final.Priority = PriorityHigh
		audit.VIPEscalated = true
	}

	audit.Elapsed = time.Since(start)

	result := &ClassificationResult{
		ProcessingID: uuid.NewString(),
		Sender:       email.From,
		Verdict:      final,
		Response:     s.composer.Compose(email, &final),
		Audit:        audit,
		ProcessedAt:  time.Now(),
	}

	s.logger.Info("Classified email",
		zap.String("processing_id", result.ProcessingID),
		zap.String("sender", email.From),
		zap.String("intent", string(final.Intent)),
		zap.String("priority", string(final.Priority)),
		zap.String("source", string(final.Source)),
		zap.Float64("confidence", final.Confidence),
		zap.String("selection", audit.SelectionReason),
		zap.Duration("elapsed", audit.Elapsed))

	if s.metrics != nil {
		s.metrics.ObserveResult(result)
	}
	if s.store != nil {
		rec := &ResultRecord{
			ProcessingID: result.ProcessingID,
			Sender:       result.Sender,
			Intent:       final.Intent,
			Priority:     final.Priority,
			Source:       final.Source,
			Confidence:   final.Confidence,
			ProcessedAt:  result.ProcessedAt,
		}
		if err := s.store.Save(ctx, rec); err != nil {
			s.logger.Error("Failed to persist classification result", zap.Error(err))
		}
	}

	return result, nil
}

// consultAI invokes the AI adapter under the configured timeout budget.
// A late result is discarded; cancellation of the parent context abandons
// the wait without touching the rule path.
func (s *TriageService) consultAI(ctx context.Context, email *Email) (*EngineVerdict, error) {
	aiCtx, cancel := context.WithTimeout(ctx, s.aiTimeout)
	defer cancel()

	type outcome struct {
		verdict *EngineVerdict
		err     error
	}
	ch := make(chan outcome, 1)
	go func() {
		verdict, err := s.ai.ClassifyEmail(aiCtx, email)
		ch <- outcome{verdict, err}
	}()

	select {
	case out := <-ch:
		if out.err != nil {
			return nil, out.err
		}
		if err := validateAIVerdict(out.verdict); err != nil {
			return nil, err
		}
		return out.verdict, nil
	case <-aiCtx.Done():
		return nil, aiCtx.Err()
	}
}

// validateAIVerdict treats an out-of-contract AI verdict the same as a
// provider failure
func validateAIVerdict(verdict *EngineVerdict) error {
	if verdict == nil {
		return fmt.Errorf("ai verdict is nil")
	}
	if !verdict.Intent.Valid() {
		return fmt.Errorf("ai verdict has unknown intent %q", verdict.Intent)
	}
	if !verdict.Priority.Valid() {
		return fmt.Errorf("ai verdict has unknown priority %q", verdict.Priority)
	}
	if verdict.Confidence < 0 || verdict.Confidence > 1 {
		return fmt.Errorf("ai verdict confidence %.3f out of range", verdict.Confidence)
	}
	if verdict.SuggestedResponse == "" {
		return fmt.Errorf("ai verdict has empty suggested response")
	}
	return nil
}
