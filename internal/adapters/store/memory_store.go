package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mailsift/mailsift/internal/core"
)

// MemoryStore is an in-memory implementation of the ResultStore interface
type MemoryStore struct {
	records     []*core.ResultRecord
	mu          sync.RWMutex
	logger      *zap.Logger
	retention   time.Duration
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewMemoryStore creates a new in-memory result store
func NewMemoryStore(logger *zap.Logger, retention, cleanupFreq time.Duration) *MemoryStore {
	s := &MemoryStore{
		logger:      logger,
		retention:   retention,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	// Start background purge
	go s.startPurgeTask()

	return s
}

// Save stores a classification result
func (s *MemoryStore) Save(ctx context.Context, rec *core.ResultRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *rec
	s.records = append(s.records, &stored)
	return nil
}

// Recent retrieves up to limit of the most recently processed results,
// newest first
func (s *MemoryStore) Recent(ctx context.Context, limit int) ([]*core.ResultRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.records) {
		limit = len(s.records)
	}

	out := make([]*core.ResultRecord, 0, limit)
	for i := len(s.records) - 1; i >= len(s.records)-limit; i-- {
		rec := *s.records[i]
		out = append(out, &rec)
	}
	return out, nil
}

// Purge removes results older than the retention window
func (s *MemoryStore) Purge(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-s.retention)
	kept := s.records[:0]
	purged := 0
	for _, rec := range s.records {
		if rec.ProcessedAt.After(cutoff) {
			kept = append(kept, rec)
		} else {
			purged++
		}
	}
	s.records = kept

	s.logger.Debug("Purged expired result records", zap.Int("purged_count", purged))
	return nil
}

// startPurgeTask starts a background task to purge expired records
func (s *MemoryStore) startPurgeTask() {
	ticker := time.NewTicker(s.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Purge(context.Background()); err != nil {
				s.logger.Error("Failed to purge result store", zap.Error(err))
			}
		case <-s.stopCh:
			return
		}
	}
}

// Stop stops the background purge task
func (s *MemoryStore) Stop() {
	close(s.stopCh)
}
