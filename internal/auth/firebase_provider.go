package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	fbauth "firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"expensely-go/internal/models"
)

// firebaseProvider implements IdentityProvider on top of the Google
// Identity Toolkit REST API (API-key authenticated, the same surface the
// Firebase client SDKs use) and the Firebase Admin Auth client for
// refresh-token revocation on sign-out.
type firebaseProvider struct {
	relyingparty *identitytoolkit.RelyingpartyService
	adminAuth    *fbauth.Client
	redirectURL  string
	logger       *zap.Logger

	mu        sync.Mutex
	current   *models.Identity
	callbacks []IdentityChangeCallback
}

// NewFirebaseProvider creates an IdentityProvider backed by Firebase
// Authentication. apiKey is the Firebase web API key; redirectURL is where
// federated sign-ins land. adminAuth may be nil, in which case sign-out
// skips refresh-token revocation.
func NewFirebaseProvider(ctx context.Context, apiKey, redirectURL string, adminAuth *fbauth.Client, logger *zap.Logger) (IdentityProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("NewFirebaseProvider: apiKey cannot be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc, err := identitytoolkit.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("identitytoolkit.NewService: %w", err)
	}
	return &firebaseProvider{
		relyingparty: svc.Relyingparty,
		adminAuth:    adminAuth,
		redirectURL:  redirectURL,
		logger:       logger,
	}, nil
}

func (p *firebaseProvider) Authenticate(ctx context.Context, email, password string) (*SignInResult, error) {
	resp, err := p.relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, classifyAuthError(err)
	}
	result := &SignInResult{
		Identity: models.Identity{
			ID:          resp.LocalId,
			Email:       resp.Email,
			DisplayName: resp.DisplayName,
			AvatarURL:   resp.PhotoUrl,
		},
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
	}
	p.notify(&result.Identity)
	return result, nil
}

func (p *firebaseProvider) SignUp(ctx context.Context, email, password, displayName string) (*SignInResult, error) {
	resp, err := p.relyingparty.SignupNewUser(&identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		Email:       email,
		Password:    password,
		DisplayName: displayName,
	}).Context(ctx).Do()
	if err != nil {
		return nil, classifyAuthError(err)
	}
	result := &SignInResult{
		Identity: models.Identity{
			ID:          resp.LocalId,
			Email:       resp.Email,
			DisplayName: resp.DisplayName,
		},
		IDToken: resp.IdToken,
	}
	p.notify(&result.Identity)
	return result, nil
}

func (p *firebaseProvider) BeginFederatedAuthentication(ctx context.Context, provider string) (string, string, error) {
	resp, err := p.relyingparty.CreateAuthUri(&identitytoolkit.IdentitytoolkitRelyingpartyCreateAuthUriRequest{
		ProviderId:  provider,
		ContinueUri: p.redirectURL,
	}).Context(ctx).Do()
	if err != nil {
		return "", "", classifyAuthError(err)
	}
	return resp.AuthUri, resp.SessionId, nil
}

func (p *firebaseProvider) ResolveRedirectResult(ctx context.Context, requestURI, sessionID string) (*SignInResult, error) {
	if requestURI == "" {
		// No pending redirect to resolve.
		return nil, nil
	}
	resp, err := p.relyingparty.VerifyAssertion(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyAssertionRequest{
		RequestUri:        requestURI,
		SessionId:         sessionID,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, classifyAuthError(err)
	}
	result := &SignInResult{
		Identity: models.Identity{
			ID:          resp.LocalId,
			Email:       resp.Email,
			DisplayName: resp.DisplayName,
			AvatarURL:   resp.PhotoUrl,
		},
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
	}
	p.notify(&result.Identity)
	return result, nil
}

func (p *firebaseProvider) SendPasswordReset(ctx context.Context, email string) error {
	_, err := p.relyingparty.GetOobConfirmationCode(&identitytoolkit.Relyingparty{
		RequestType: "PASSWORD_RESET",
		Email:       email,
	}).Context(ctx).Do()
	if err != nil {
		return classifyAuthError(err)
	}
	return nil
}

func (p *firebaseProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	current := p.current
	p.mu.Unlock()

	if current != nil && p.adminAuth != nil {
		// Best effort; a failed revocation never blocks the local
		// sign-out.
		if err := p.adminAuth.RevokeRefreshTokens(ctx, current.ID); err != nil {
			p.logger.Warn("Failed to revoke refresh tokens on sign-out",
				zap.String("userID", current.ID), zap.Error(err))
		}
	}
	p.notify(nil)
	return nil
}

func (p *firebaseProvider) SubscribeIdentityChanges(cb IdentityChangeCallback) {
	if cb == nil {
		return
	}
	p.mu.Lock()
	p.callbacks = append(p.callbacks, cb)
	p.mu.Unlock()
}

// notify records the new identity and invokes subscribers outside the lock.
func (p *firebaseProvider) notify(identity *models.Identity) {
	p.mu.Lock()
	p.current = identity
	callbacks := make([]IdentityChangeCallback, len(p.callbacks))
	copy(callbacks, p.callbacks)
	p.mu.Unlock()
	for _, cb := range callbacks {
		cb(identity)
	}
}

// classifyAuthError maps Identity Toolkit error messages onto the local
// taxonomy. Unrecognized failures pass through wrapped.
func classifyAuthError(err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return fmt.Errorf("identity provider: %w", err)
	}
	msg := gerr.Message
	switch {
	case strings.HasPrefix(msg, "EMAIL_NOT_FOUND"),
		strings.HasPrefix(msg, "INVALID_PASSWORD"),
		strings.HasPrefix(msg, "INVALID_LOGIN_CREDENTIALS"),
		strings.HasPrefix(msg, "INVALID_EMAIL"),
		strings.HasPrefix(msg, "USER_DISABLED"):
		return fmt.Errorf("%w: %s", ErrInvalidCredential, msg)
	case strings.HasPrefix(msg, "UNAUTHORIZED_DOMAIN"),
		strings.HasPrefix(msg, "OPERATION_NOT_ALLOWED"):
		return fmt.Errorf("%w: %s", ErrUnauthorizedDomain, msg)
	case strings.HasPrefix(msg, "EMAIL_EXISTS"):
		return fmt.Errorf("%w: %s", ErrEmailInUse, msg)
	default:
		return fmt.Errorf("identity provider: %w", gerr)
	}
}
