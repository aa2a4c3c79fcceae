// Package metrics tracks per-intent and per-priority counters plus
// engine-usage ratios for the metrics collaborator.
package metrics

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mailsift/mailsift/internal/core"
)

// Recorder is an in-process implementation of core.MetricsSink
type Recorder struct {
	mu           sync.Mutex
	byIntent     map[core.Intent]int64
	byPriority   map[core.Priority]int64
	bySource     map[core.VerdictSource]int64
	aiFailures   int64
	total        int64
	totalLatency time.Duration
	logger       *zap.Logger
}

// Snapshot is a point-in-time copy of the counters
type Snapshot struct {
	Total      int64
	ByIntent   map[core.Intent]int64
	ByPriority map[core.Priority]int64
	BySource   map[core.VerdictSource]int64
	AIFailures int64
	AvgLatency time.Duration
}

// NewRecorder creates a metrics recorder
func NewRecorder(logger *zap.Logger) *Recorder {
	return &Recorder{
		byIntent:   make(map[core.Intent]int64),
		byPriority: make(map[core.Priority]int64),
		bySource:   make(map[core.VerdictSource]int64),
		logger:     logger,
	}
}

// ObserveResult records counters and latency for one processed email
func (r *Recorder) ObserveResult(result *core.ClassificationResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.total++
	r.byIntent[result.Verdict.Intent]++
	r.byPriority[result.Verdict.Priority]++
	r.bySource[result.Verdict.Source]++
	if result.Audit.AIFailed {
		r.aiFailures++
	}
	r.totalLatency += result.Audit.Elapsed
}

// Snapshot returns a copy of the current counters
func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := Snapshot{
		Total:      r.total,
		ByIntent:   make(map[core.Intent]int64, len(r.byIntent)),
		ByPriority: make(map[core.Priority]int64, len(r.byPriority)),
		BySource:   make(map[core.VerdictSource]int64, len(r.bySource)),
		AIFailures: r.aiFailures,
	}
	for intent, n := range r.byIntent {
		snap.ByIntent[intent] = n
	}
	for priority, n := range r.byPriority {
		snap.ByPriority[priority] = n
	}
	for source, n := range r.bySource {
		snap.BySource[source] = n
	}
	if r.total > 0 {
		snap.AvgLatency = r.totalLatency / time.Duration(r.total)
	}
	return snap
}

// LogSummary writes the current counters to the log, typically at shutdown
func (r *Recorder) LogSummary() {
	snap := r.Snapshot()
	if r.logger == nil {
		return
	}
	r.logger.Info("Classification metrics",
		zap.Int64("total", snap.Total),
		zap.Int64("by_source_rule", snap.BySource[core.SourceRule]),
		zap.Int64("by_source_ai", snap.BySource[core.SourceAI]),
		zap.Int64("ai_failures", snap.AIFailures),
		zap.Duration("avg_latency", snap.AvgLatency),
		zap.Any("by_intent", snap.ByIntent),
		zap.Any("by_priority", snap.ByPriority))
}
