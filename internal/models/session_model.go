package models

// Screen is the enumerated application screen. Exactly one is active at a
// time; it is process-local UI state and never persisted.
type Screen string

const (
	ScreenLogin       Screen = "LOGIN"
	ScreenRegister    Screen = "REGISTER"
	ScreenDashboard   Screen = "DASHBOARD"
	ScreenReport      Screen = "REPORT"
	ScreenAddExpense  Screen = "ADD_EXPENSE"
	ScreenEditExpense Screen = "EDIT_EXPENSE"
)

// Valid reports whether s is one of the known screens.
func (s Screen) Valid() bool {
	switch s {
	case ScreenLogin, ScreenRegister, ScreenDashboard,
		ScreenReport, ScreenAddExpense, ScreenEditExpense:
		return true
	}
	return false
}

// SyncStatus classifies a live-subscription failure.
type SyncStatus string

const (
	SyncOK            SyncStatus = "none"
	SyncAccessDenied  SyncStatus = "access-denied"
	SyncIndexRequired SyncStatus = "index-required"
	SyncFailed        SyncStatus = "other"
)

// SyncCondition is the controller-level synchronization error state exposed
// to the presentation layer. It persists until resolved externally; the
// screen stays mounted and shows a remediation affordance instead of
// crashing.
type SyncCondition struct {
	Status SyncStatus `json:"status"`
	// URL carries the remediation link for SyncIndexRequired, extracted
	// verbatim from the backend error text.
	URL     string `json:"url,omitempty"`
	Message string `json:"message,omitempty"`
}

// OK reports whether the condition is clear.
func (c SyncCondition) OK() bool {
	return c.Status == "" || c.Status == SyncOK
}
