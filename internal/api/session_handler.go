package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"expensely-go/internal/auth"
	"expensely-go/internal/core"
	"expensely-go/internal/models"
)

// SessionHandler exposes the authentication operations and the controller's
// presentation state.
type SessionHandler struct {
	provider   auth.IdentityProvider
	controller *core.Controller
	logger     *zap.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(provider auth.IdentityProvider, controller *core.Controller, logger *zap.Logger) *SessionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionHandler{provider: provider, controller: controller, logger: logger}
}

// mapAuthErrorToStatus maps identity-provider errors to HTTP responses.
// Authentication failures are never fatal; the client shows a remediation
// message.
func mapAuthErrorToStatus(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredential):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid email or password"})
	case errors.Is(err, auth.ErrUnauthorizedDomain):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "Sign-in is not allowed from this origin"})
	case errors.Is(err, auth.ErrEmailInUse):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "An account with this email already exists"})
	default:
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Authentication provider error", Details: err.Error()})
	}
}

// Login handles POST /api/v1/auth/login.
func (h *SessionHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}
	result, err := h.provider.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Warn("Login failed", zap.String("email", req.Email), zap.Error(err))
		mapAuthErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, SignInResponse{
		Identity:     result.Identity,
		IDToken:      result.IDToken,
		RefreshToken: result.RefreshToken,
	})
}

// Register handles POST /api/v1/auth/register.
func (h *SessionHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}
	result, err := h.provider.SignUp(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		h.logger.Warn("Registration failed", zap.String("email", req.Email), zap.Error(err))
		mapAuthErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusCreated, SignInResponse{
		Identity:     result.Identity,
		IDToken:      result.IDToken,
		RefreshToken: result.RefreshToken,
	})
}

// FederatedBegin handles POST /api/v1/auth/federated. It returns the
// redirect URI the client must visit; completion is observed through the
// resolve endpoint, not here.
func (h *SessionHandler) FederatedBegin(c *gin.Context) {
	var req models.FederatedLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}
	authURI, sessionID, err := h.provider.BeginFederatedAuthentication(c.Request.Context(), req.Provider)
	if err != nil {
		h.logger.Warn("Federated sign-in begin failed", zap.String("provider", req.Provider), zap.Error(err))
		mapAuthErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, FederatedBeginResponse{AuthURI: authURI, SessionID: sessionID})
}

// FederatedResolve handles GET /api/v1/auth/federated/resolve. A missing
// requestUri means there is no pending redirect, which is not an error:
// the client simply stays signed out.
func (h *SessionHandler) FederatedResolve(c *gin.Context) {
	requestURI := c.Query("requestUri")
	sessionID := c.Query("sessionId")
	result, err := h.provider.ResolveRedirectResult(c.Request.Context(), requestURI, sessionID)
	if err != nil {
		h.logger.Warn("Federated sign-in resolution failed", zap.Error(err))
		mapAuthErrorToStatus(c, err)
		return
	}
	if result == nil {
		c.JSON(http.StatusOK, SuccessResponse{Message: "No pending federated sign-in"})
		return
	}
	c.JSON(http.StatusOK, SignInResponse{
		Identity:     result.Identity,
		IDToken:      result.IDToken,
		RefreshToken: result.RefreshToken,
	})
}

// PasswordReset handles POST /api/v1/auth/reset.
func (h *SessionHandler) PasswordReset(c *gin.Context) {
	var req models.PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}
	if err := h.provider.SendPasswordReset(c.Request.Context(), req.Email); err != nil {
		h.logger.Warn("Password reset failed", zap.String("email", req.Email), zap.Error(err))
		mapAuthErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Password reset email sent"})
}

// Logout handles POST /api/v1/auth/logout.
func (h *SessionHandler) Logout(c *gin.Context) {
	if err := h.controller.SignOut(c.Request.Context()); err != nil {
		h.logger.Warn("Sign-out failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to sign out", Details: err.Error()})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Signed out"})
}

// State handles GET /api/v1/state: the controller's presentation snapshot
// (screen, identity, expense list, budget, sync condition, report).
func (h *SessionHandler) State(c *gin.Context) {
	c.JSON(http.StatusOK, h.controller.Snapshot())
}

// Navigate handles POST /api/v1/navigate.
func (h *SessionHandler) Navigate(c *gin.Context) {
	var req models.NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}
	if !req.Screen.Valid() {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Unknown screen", Details: string(req.Screen)})
		return
	}
	if err := h.controller.Navigate(req.Screen); err != nil {
		if errors.Is(err, core.ErrNoEditingTarget) {
			c.JSON(http.StatusConflict, ErrorResponse{Error: "No expense is being edited"})
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Navigation rejected", Details: err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.controller.Snapshot())
}
