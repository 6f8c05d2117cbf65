package interfaces

import (
	"context"

	"github.com/ternarybob/soundbite/internal/models"
)

// AuditStorage persists the local audit trail of pipeline operations
type AuditStorage interface {
	Record(ctx context.Context, entry *models.AuditEntry) error

	// List returns the most recent entries first. An empty operation matches all.
	List(ctx context.Context, operation models.AuditOperation, limit int) ([]models.AuditEntry, error)

	Count(ctx context.Context) (int, error)
}

// StorageManager is the local (non-vector) storage layer
type StorageManager interface {
	KeyValueStorage() KeyValueStorage
	AuditStorage() AuditStorage

	// LoadVariablesFromFiles loads variables.toml from dirPath into the KV store
	LoadVariablesFromFiles(ctx context.Context, dirPath string) error

	// LoadEnvFile loads KEY=value lines into the KV store. Missing files are skipped.
	LoadEnvFile(ctx context.Context, filePath string) error

	Close() error
}
