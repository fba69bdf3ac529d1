package core

import (
	"context"

	"go.uber.org/zap"

	"expensely-go/internal/db"
	"expensely-go/internal/models"
)

// auditService implements the AuditService interface.
type auditService struct {
	auditRepo db.AuditRepository
	logger    *zap.Logger
}

// NewAuditService creates a new AuditService instance.
// It takes an AuditRepository (from the db package) as a dependency.
func NewAuditService(auditRepo db.AuditRepository, logger *zap.Logger) AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &auditService{
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// Record appends a mutation-trail entry. The trail is best effort: a failed
// append is logged and never propagated to the mutation it describes.
func (s *auditService) Record(ctx context.Context, userID, action, targetID string, details map[string]interface{}) {
	if s.auditRepo == nil || userID == "" {
		return
	}
	entry := models.AuditLog{
		UserID:   userID,
		Action:   action,
		TargetID: targetID,
		Details:  details,
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		s.logger.Warn("Failed to record audit entry",
			zap.String("userID", userID),
			zap.String("action", action),
			zap.String("targetID", targetID),
			zap.Error(err))
	}
}
