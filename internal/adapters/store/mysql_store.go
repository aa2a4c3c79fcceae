package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/mailsift/mailsift/internal/core"
)

const mysqlTimeFormat = "2006-01-02 15:04:05"

// MySQLStore is a MySQL implementation of the ResultStore interface
type MySQLStore struct {
	db          *sql.DB
	logger      *zap.Logger
	retention   time.Duration
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewMySQLStore creates a new MySQL result store
func NewMySQLStore(dsn string, logger *zap.Logger, retention, cleanupFreq time.Duration) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS triage_results (
			processing_id VARCHAR(36) PRIMARY KEY,
			sender VARCHAR(255),
			intent VARCHAR(32),
			priority VARCHAR(16),
			source VARCHAR(16),
			confidence FLOAT,
			processed_at TIMESTAMP,
			INDEX idx_processed_at (processed_at)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	s := &MySQLStore{
		db:          db,
		logger:      logger,
		retention:   retention,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	// Start background purge
	go s.startPurgeTask()

	return s, nil
}

// Save stores a classification result
func (s *MySQLStore) Save(ctx context.Context, rec *core.ResultRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO triage_results
			(processing_id, sender, intent, priority, source, confidence, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			intent = VALUES(intent),
			priority = VALUES(priority),
			source = VALUES(source),
			confidence = VALUES(confidence),
			processed_at = VALUES(processed_at)
	`, rec.ProcessingID, rec.Sender, string(rec.Intent), string(rec.Priority),
		string(rec.Source), rec.Confidence, rec.ProcessedAt.UTC().Format(mysqlTimeFormat))

	if err != nil {
		return fmt.Errorf("failed to insert result record: %w", err)
	}
	return nil
}

// Recent retrieves up to limit of the most recently processed results
func (s *MySQLStore) Recent(ctx context.Context, limit int) ([]*core.ResultRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT processing_id, sender, intent, priority, source, confidence, processed_at
		FROM triage_results
		ORDER BY processed_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query result records: %w", err)
	}
	defer rows.Close()

	var out []*core.ResultRecord
	for rows.Next() {
		var rec core.ResultRecord
		var intent, priority, source, processedAt string
		if err := rows.Scan(&rec.ProcessingID, &rec.Sender, &intent, &priority,
			&source, &rec.Confidence, &processedAt); err != nil {
			return nil, fmt.Errorf("failed to scan result record: %w", err)
		}
		rec.Intent = core.Intent(intent)
		rec.Priority = core.Priority(priority)
		rec.Source = core.VerdictSource(source)
		rec.ProcessedAt, err = time.Parse(mysqlTimeFormat, processedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse processed_at timestamp: %w", err)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// Purge removes results older than the retention window
func (s *MySQLStore) Purge(ctx context.Context) error {
	cutoff := time.Now().Add(-s.retention).UTC().Format(mysqlTimeFormat)

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM triage_results
		WHERE processed_at <= ?
	`, cutoff)
	if err != nil {
		return fmt.Errorf("failed to purge expired records: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		s.logger.Warn("Failed to get rows affected during purge", zap.Error(err))
	} else {
		s.logger.Debug("Purged expired result records", zap.Int64("purged_count", rowsAffected))
	}

	return nil
}

// startPurgeTask starts a background task to purge expired records
func (s *MySQLStore) startPurgeTask() {
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

// Stop stops the background purge task and closes the database
func (s *MySQLStore) Stop() {
	close(s.stopCh)
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close MySQL database", zap.Error(err))
	}
}
