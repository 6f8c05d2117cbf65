package models

import "time"

// AuditOperation names an audited pipeline operation
type AuditOperation string

const (
	AuditDescribeImage AuditOperation = "describe_image"
	AuditSearchSounds  AuditOperation = "search_sounds"
	AuditMatchImage    AuditOperation = "match_image"
	AuditUploadSound   AuditOperation = "upload_sound"
)

// AuditEntry records one external-facing operation. Entries are written for
// inspection only and never consulted when serving a request.
type AuditEntry struct {
	ID          string         `json:"id"`
	Timestamp   time.Time      `json:"timestamp" badgerhold:"index"`
	Operation   AuditOperation `json:"operation" badgerhold:"index"`
	Success     bool           `json:"success"`
	Error       string         `json:"error,omitempty"`
	DurationMs  int64          `json:"duration_ms"`
	QueryText   string         `json:"query_text,omitempty"`
	ResultCount int            `json:"result_count"`
}
