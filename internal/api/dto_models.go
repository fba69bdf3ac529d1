package api

import "expensely-go/internal/models"

// ErrorResponse is a generic structure for returning errors via API.
type ErrorResponse struct {
	Error   string `json:"error"`             // A high-level error message or code
	Details string `json:"details,omitempty"` // More specific details about the error, if available
}

// SuccessResponse is a generic structure for simple success messages.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// SignInResponse is returned on a successful login, registration or
// federated-redirect resolution. The client presents IDToken as the bearer
// token on subsequent requests.
type SignInResponse struct {
	Identity     models.Identity `json:"identity"`
	IDToken      string          `json:"idToken"`
	RefreshToken string          `json:"refreshToken,omitempty"`
}

// FederatedBeginResponse carries the redirect target of a federated
// sign-in. The client visits AuthURI and hands SessionID back to the
// resolve endpoint.
type FederatedBeginResponse struct {
	AuthURI   string `json:"authUri"`
	SessionID string `json:"sessionId"`
}
