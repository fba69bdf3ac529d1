package auth

import (
	"context"
	"errors"

	"expensely-go/internal/models"
)

// Authentication failure taxonomy. All are recoverable: the presentation
// layer shows a remediation message and the session stays signed out.
var (
	// ErrInvalidCredential covers unknown emails, wrong passwords and
	// malformed credentials.
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrUnauthorizedDomain is returned when the sign-in origin is not
	// allow-listed on the identity provider.
	ErrUnauthorizedDomain = errors.New("unauthorized domain")
	// ErrEmailInUse is returned when registering an email that already has
	// an account.
	ErrEmailInUse = errors.New("email already in use")
)

// SignInResult is what a successful authentication yields: the opaque
// identity plus the token material the HTTP adapter hands to the client.
type SignInResult struct {
	Identity     models.Identity
	IDToken      string
	RefreshToken string
}

// IdentityChangeCallback receives the new identity on every sign-in and nil
// on sign-out. Callbacks run on the goroutine that triggered the change.
type IdentityChangeCallback func(identity *models.Identity)

// IdentityProvider is the boundary to the external authentication service.
type IdentityProvider interface {
	// Authenticate performs an email/password sign-in and notifies
	// identity-change subscribers on success.
	Authenticate(ctx context.Context, email, password string) (*SignInResult, error)
	// SignUp creates a new account and signs it in.
	SignUp(ctx context.Context, email, password, displayName string) (*SignInResult, error)
	// BeginFederatedAuthentication starts a redirect-based federated
	// sign-in and returns the URI the client must visit plus an opaque
	// session id used to resolve the result.
	BeginFederatedAuthentication(ctx context.Context, provider string) (authURI, sessionID string, err error)
	// ResolveRedirectResult completes a federated sign-in from the
	// redirect callback. It returns (nil, nil) when there is no pending
	// redirect to resolve.
	ResolveRedirectResult(ctx context.Context, requestURI, sessionID string) (*SignInResult, error)
	// SendPasswordReset asks the provider to email a password reset link.
	SendPasswordReset(ctx context.Context, email string) error
	// SignOut ends the current session and notifies subscribers with nil.
	SignOut(ctx context.Context) error
	// SubscribeIdentityChanges registers a callback for sign-in/sign-out
	// notifications.
	SubscribeIdentityChanges(cb IdentityChangeCallback)
}
