package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mailsift/mailsift/internal/core"
)

func newTestRecord(id string, processedAt time.Time) *core.ResultRecord {
	return &core.ResultRecord{
		ProcessingID: id,
		Sender:       "jane@example.com",
		Intent:       core.IntentPricingInquiry,
		Priority:     core.PriorityNormal,
		Source:       core.SourceRule,
		Confidence:   0.8,
		ProcessedAt:  processedAt,
	}
}

func TestMemoryStoreSaveAndRecent(t *testing.T) {
	s := NewMemoryStore(zap.NewNop(), time.Hour, time.Hour)
	defer s.Stop()

	ctx := context.Background()
	now := time.Now()
	for i := 0; i < 5; i++ {
		rec := newTestRecord(fmt.Sprintf("id-%d", i), now.Add(time.Duration(i)*time.Second))
		if err := s.Save(ctx, rec); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	recent, err := s.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("Recent(3) returned %d records", len(recent))
	}
	// Newest first
	for i, wantID := range []string{"id-4", "id-3", "id-2"} {
		if recent[i].ProcessingID != wantID {
			t.Errorf("recent[%d].ProcessingID = %q, want %q", i, recent[i].ProcessingID, wantID)
		}
	}

	all, err := s.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(all) != 5 {
		t.Errorf("Recent(0) returned %d records, want all 5", len(all))
	}
}

func TestMemoryStoreSaveCopiesRecord(t *testing.T) {
	s := NewMemoryStore(zap.NewNop(), time.Hour, time.Hour)
	defer s.Stop()

	ctx := context.Background()
	rec := newTestRecord("id-1", time.Now())
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	rec.Sender = "mutated@example.com"

	recent, err := s.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if recent[0].Sender != "jane@example.com" {
		t.Errorf("stored record shares memory with the caller: Sender = %q", recent[0].Sender)
	}
}

func TestMemoryStorePurge(t *testing.T) {
	s := NewMemoryStore(zap.NewNop(), time.Hour, time.Hour)
	defer s.Stop()

	ctx := context.Background()
	now := time.Now()
	if err := s.Save(ctx, newTestRecord("old", now.Add(-2*time.Hour))); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := s.Save(ctx, newTestRecord("fresh", now)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if err := s.Purge(ctx); err != nil {
		t.Fatalf("Purge() error = %v", err)
	}

	recent, err := s.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(recent) != 1 || recent[0].ProcessingID != "fresh" {
		t.Errorf("after purge got %d records, want only the fresh one", len(recent))
	}
}
