package common

import (
	"github.com/google/uuid"
)

// NewRequestID generates a unique request ID with the "req_" prefix
// Format: req_<uuid>
func NewRequestID() string {
	return "req_" + uuid.New().String()
}

// NewAuditID generates a unique audit entry ID with the "aud_" prefix
func NewAuditID() string {
	return "aud_" + uuid.New().String()
}
