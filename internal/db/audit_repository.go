package db

import (
	"context"
	"errors"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"expensely-go/internal/models"
)

const auditCollection = "audit"

// firestoreAuditRepository implements the AuditRepository interface using
// Firestore. Entries live in the per-user subcollection
// users/{userId}/audit.
type firestoreAuditRepository struct {
	client *firestore.Client
}

// NewFirestoreAuditRepository creates a new Firestore-backed
// AuditRepository.
func NewFirestoreAuditRepository(client *firestore.Client) AuditRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for AuditRepository.")
	}
	return &firestoreAuditRepository{client: client}
}

// Create appends a mutation-trail entry. The entry ID is generated here
// when the caller did not provide one.
func (r *firestoreAuditRepository) Create(ctx context.Context, entry models.AuditLog) error {
	if entry.UserID == "" {
		return errors.New("userID cannot be empty for audit Create operation")
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	_, err := r.client.Collection(usersCollection).
		Doc(entry.UserID).
		Collection(auditCollection).
		Doc(entry.ID).
		Create(ctx, entry)
	if err != nil {
		return fmt.Errorf("failed to create audit entry for user '%s': %w", entry.UserID, err)
	}
	return nil
}
