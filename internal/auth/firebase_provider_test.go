package auth

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"google.golang.org/api/googleapi"
)

func toolkitError(message string) error {
	return &googleapi.Error{Code: http.StatusBadRequest, Message: message}
}

func TestClassifyAuthError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"email not found", toolkitError("EMAIL_NOT_FOUND"), ErrInvalidCredential},
		{"wrong password", toolkitError("INVALID_PASSWORD"), ErrInvalidCredential},
		{"new-style credential rejection", toolkitError("INVALID_LOGIN_CREDENTIALS"), ErrInvalidCredential},
		{"malformed email", toolkitError("INVALID_EMAIL : Invalid email address"), ErrInvalidCredential},
		{"disabled account", toolkitError("USER_DISABLED"), ErrInvalidCredential},
		{"unauthorized domain", toolkitError("UNAUTHORIZED_DOMAIN"), ErrUnauthorizedDomain},
		{"provider disabled", toolkitError("OPERATION_NOT_ALLOWED"), ErrUnauthorizedDomain},
		{"duplicate registration", toolkitError("EMAIL_EXISTS"), ErrEmailInUse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyAuthError(tt.err)
			if !errors.Is(got, tt.want) {
				t.Fatalf("classifyAuthError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestClassifyAuthErrorUnrecognized(t *testing.T) {
	err := classifyAuthError(toolkitError("TOO_MANY_ATTEMPTS_TRY_LATER"))
	if errors.Is(err, ErrInvalidCredential) || errors.Is(err, ErrUnauthorizedDomain) || errors.Is(err, ErrEmailInUse) {
		t.Fatalf("unrecognized toolkit error must not map to a sentinel: %v", err)
	}
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("original googleapi error should remain unwrappable: %v", err)
	}
}

func TestClassifyAuthErrorWrapped(t *testing.T) {
	// Transports often wrap the API error before it reaches the provider.
	wrapped := fmt.Errorf("Do: %w", toolkitError("EMAIL_EXISTS"))
	if got := classifyAuthError(wrapped); !errors.Is(got, ErrEmailInUse) {
		t.Fatalf("wrapped toolkit error not classified: %v", got)
	}
}

func TestClassifyAuthErrorNonAPI(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	got := classifyAuthError(cause)
	if !errors.Is(got, cause) {
		t.Fatalf("non-API failure should wrap the original error: %v", got)
	}
}
