package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/soundbite/internal/common"
	"github.com/ternarybob/soundbite/internal/interfaces"
	"github.com/ternarybob/soundbite/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// AuditStorage implements interfaces.AuditStorage for Badger
type AuditStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewAuditStorage creates a new AuditStorage instance
func NewAuditStorage(db *BadgerDB, logger arbor.ILogger) interfaces.AuditStorage {
	return &AuditStorage{
		db:     db,
		logger: logger,
	}
}

// Record stores an audit entry, assigning ID and Timestamp when unset
func (s *AuditStorage) Record(ctx context.Context, entry *models.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = common.NewAuditID()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	if err := s.db.Store().Insert(entry.ID, entry); err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	return nil
}

// List returns entries newest first, optionally filtered by operation
func (s *AuditStorage) List(ctx context.Context, operation models.AuditOperation, limit int) ([]models.AuditEntry, error) {
	var query *badgerhold.Query
	if operation != "" {
		query = badgerhold.Where("Operation").Eq(operation)
	} else {
		query = badgerhold.Where("ID").Ne("")
	}
	query = query.SortBy("Timestamp").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}

	var entries []models.AuditEntry
	if err := s.db.Store().Find(&entries, query); err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return entries, nil
}

// Count returns the total number of audit entries
func (s *AuditStorage) Count(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.AuditEntry{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count audit entries: %w", err)
	}
	return int(count), nil
}
