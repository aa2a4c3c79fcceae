package metrics

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mailsift/mailsift/internal/core"
)

func result(intent core.Intent, priority core.Priority, source core.VerdictSource, aiFailed bool, elapsed time.Duration) *core.ClassificationResult {
	return &core.ClassificationResult{
		ProcessingID: "test",
		Verdict: core.EngineVerdict{
			Intent:   intent,
			Priority: priority,
			Source:   source,
		},
		Audit: core.AuditTrail{AIFailed: aiFailed, Elapsed: elapsed},
	}
}

func TestRecorderCounters(t *testing.T) {
	r := NewRecorder(zap.NewNop())

	r.ObserveResult(result(core.IntentComplaint, core.PriorityUrgent, core.SourceRule, false, 10*time.Millisecond))
	r.ObserveResult(result(core.IntentComplaint, core.PriorityHigh, core.SourceAI, false, 20*time.Millisecond))
	r.ObserveResult(result(core.IntentPricingInquiry, core.PriorityNormal, core.SourceRule, true, 30*time.Millisecond))

	snap := r.Snapshot()
	if snap.Total != 3 {
		t.Errorf("Total = %d, want 3", snap.Total)
	}
	if snap.ByIntent[core.IntentComplaint] != 2 {
		t.Errorf("ByIntent[complaint] = %d, want 2", snap.ByIntent[core.IntentComplaint])
	}
	if snap.ByPriority[core.PriorityUrgent] != 1 {
		t.Errorf("ByPriority[urgent] = %d, want 1", snap.ByPriority[core.PriorityUrgent])
	}
	if snap.BySource[core.SourceRule] != 2 || snap.BySource[core.SourceAI] != 1 {
		t.Errorf("BySource = %v", snap.BySource)
	}
	if snap.AIFailures != 1 {
		t.Errorf("AIFailures = %d, want 1", snap.AIFailures)
	}
	if snap.AvgLatency != 20*time.Millisecond {
		t.Errorf("AvgLatency = %v, want 20ms", snap.AvgLatency)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	r := NewRecorder(zap.NewNop())
	r.ObserveResult(result(core.IntentGeneralInquiry, core.PriorityNormal, core.SourceRule, false, time.Millisecond))

	snap := r.Snapshot()
	snap.ByIntent[core.IntentGeneralInquiry] = 99

	if got := r.Snapshot().ByIntent[core.IntentGeneralInquiry]; got != 1 {
		t.Errorf("mutating a snapshot leaked into the recorder: %d", got)
	}
}

func TestEmptyRecorder(t *testing.T) {
	r := NewRecorder(zap.NewNop())
	snap := r.Snapshot()
	if snap.Total != 0 || snap.AvgLatency != 0 {
		t.Errorf("empty recorder snapshot = %+v", snap)
	}
}
