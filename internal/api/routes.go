package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"expensely-go/internal/auth"
	"expensely-go/internal/core"
	"expensely-go/internal/db"
	"expensely-go/internal/middleware"
)

// SetupRoutes configures all the application routes with their handlers and
// middleware. Global middleware (logging, recovery, CORS) are applied to
// the router before this function is called, in main.go.
func SetupRoutes(
	router *gin.Engine,
	logger *zap.Logger,
	provider auth.IdentityProvider,
	controller *core.Controller,
) {
	firebaseAuthClient := db.GetFirebaseAuthClient()
	if firebaseAuthClient == nil {
		logger.Fatal("Firebase Auth client is not initialized; routes cannot be secured.")
	}
	authMW := middleware.NewAuthMiddleware(firebaseAuthClient)
	sessionMW := middleware.RequireSessionIdentity(controller)

	sessionHandler := NewSessionHandler(provider, controller, logger)
	expenseHandler := NewExpenseHandler(controller, logger)

	apiV1 := router.Group("/api/v1")
	{
		// --- Authentication Endpoints ---
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/login", sessionHandler.Login)
			authGroup.POST("/register", sessionHandler.Register)
			authGroup.POST("/federated", sessionHandler.FederatedBegin)
			authGroup.GET("/federated/resolve", sessionHandler.FederatedResolve)
			authGroup.POST("/reset", sessionHandler.PasswordReset)
			authGroup.POST("/logout", authMW.VerifyToken(), sessionMW, sessionHandler.Logout)
		}

		// --- Presentation State Endpoints ---
		// State and navigation are reachable while signed out: the SPA
		// renders the login screen from the same snapshot.
		apiV1.GET("/state", sessionHandler.State)
		apiV1.POST("/navigate", sessionHandler.Navigate)

		// --- Expense Endpoints ---
		expensesGroup := apiV1.Group("/expenses", authMW.VerifyToken(), sessionMW)
		{
			expensesGroup.POST("", expenseHandler.Create)
			expensesGroup.PUT("", expenseHandler.Update)
			expensesGroup.POST("/:expenseId/edit", expenseHandler.StartEdit)
			expensesGroup.DELETE("/:expenseId", expenseHandler.Delete)
		}

		// --- Budget Endpoint ---
		apiV1.PUT("/budget", authMW.VerifyToken(), sessionMW, expenseHandler.UpdateBudget)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "Expensely backend is healthy."})
	})

	logger.Info("API routes configured successfully under /api/v1 and /health.")
}
