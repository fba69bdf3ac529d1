package core

import "context"

// AuditService defines the interface for the mutation audit trail.
type AuditService interface {
	// Record appends a trail entry. Implementations are best effort and
	// never fail the calling mutation.
	Record(ctx context.Context, userID, action, targetID string, details map[string]interface{})
}
