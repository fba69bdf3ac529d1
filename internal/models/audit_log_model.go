package models

import "time"

// Audit actions recorded by the controller.
const (
	AuditExpenseAdd    = "EXPENSE_ADD"
	AuditExpenseUpdate = "EXPENSE_UPDATE"
	AuditExpenseDelete = "EXPENSE_DELETE"
	AuditBudgetUpdate  = "BUDGET_UPDATE"
)

// AuditLog is one mutation-trail entry stored at users/{userId}/audit/{id}.
// Entries are best effort: a failed append is logged and never blocks the
// mutation it describes. The trail is what makes a write that raced a
// sign-out observable after the fact.
type AuditLog struct {
	ID        string                 `json:"id" firestore:"-"`
	Timestamp time.Time              `json:"timestamp" firestore:"timestamp,serverTimestamp"`
	UserID    string                 `json:"userId" firestore:"userId"`
	Action    string                 `json:"action" firestore:"action"`
	TargetID  string                 `json:"targetId,omitempty" firestore:"targetId,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty" firestore:"details,omitempty"`
}
