package db

import (
	"context"

	"expensely-go/internal/models"
)

// ProfileEvent is one delivery on a profile subscription: either a full
// replacement snapshot of the profile document or a terminal error.
type ProfileEvent struct {
	Profile *models.Profile // nil when the document does not exist
	Err     error
}

// ExpenseEvent is one delivery on an expense-collection subscription: either
// a full replacement snapshot of the ordered list or a terminal error.
type ExpenseEvent struct {
	Expenses []models.Expense
	Err      error
}

// ProfileRepository defines the storage operations on the per-account
// profile document at users/{userID}.
type ProfileRepository interface {
	GetByID(ctx context.Context, userID string) (*models.Profile, error)
	Create(ctx context.Context, profile *models.Profile) error
	// TouchLastLogin refreshes only the lastLoginAt field.
	TouchLastLogin(ctx context.Context, userID string) error
	// SetBudget writes monthlyBudget. If the document is missing it falls
	// back to a merge write carrying the budget, so the operation is
	// self-healing.
	SetBudget(ctx context.Context, userID string, budget float64) error
	// Watch subscribes to the profile document. The returned channel
	// receives a full snapshot on every change and closes after ctx is
	// cancelled or a terminal error is delivered.
	Watch(ctx context.Context, userID string) <-chan ProfileEvent
}

// ExpenseRepository defines the storage operations on the per-account
// expense collection at users/{userID}/expenses.
type ExpenseRepository interface {
	// Create writes a new record under a store-generated ID and returns
	// that ID.
	Create(ctx context.Context, expense *models.Expense) (string, error)
	// Update overwrites the mutable fields of an existing record,
	// preserving its ID and occurredAt.
	Update(ctx context.Context, expense *models.Expense) error
	Delete(ctx context.Context, ownerID, expenseID string) error
	// Watch subscribes to the collection ordered by occurredAt descending.
	// Every delivery replaces the whole list. The channel closes after ctx
	// is cancelled or a terminal error is delivered.
	Watch(ctx context.Context, ownerID string) <-chan ExpenseEvent
}

// AuditRepository defines the storage operations on the per-account
// mutation trail at users/{userID}/audit.
type AuditRepository interface {
	Create(ctx context.Context, entry models.AuditLog) error
}
