package models

// LoginRequest represents the request body for an email/password sign-in.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest represents the request body for creating a new account.
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	DisplayName string `json:"displayName,omitempty"`
}

// FederatedLoginRequest starts a redirect-based federated sign-in.
type FederatedLoginRequest struct {
	Provider string `json:"provider" binding:"required"` // e.g. "google.com"
}

// PasswordResetRequest asks the identity provider to email a reset link.
type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// NavigateRequest switches the active screen.
type NavigateRequest struct {
	Screen Screen `json:"screen" binding:"required"`
}

// ExpenseRequest represents the request body for adding or updating an
// expense. Amount and description are validated by the submitting form; the
// binding tags only reject structurally broken payloads.
type ExpenseRequest struct {
	Amount      float64  `json:"amount" binding:"required,gt=0"`
	Category    Category `json:"category" binding:"required"`
	Description string   `json:"description" binding:"required"`
}

// BudgetRequest represents the request body for updating the monthly budget.
type BudgetRequest struct {
	MonthlyBudget float64 `json:"monthlyBudget" binding:"required,gt=0"`
}
