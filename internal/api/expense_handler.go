package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"expensely-go/internal/core"
	"expensely-go/internal/models"
)

// ExpenseHandler exposes the controller's expense and budget mutation
// operations.
type ExpenseHandler struct {
	controller *core.Controller
	logger     *zap.Logger
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(controller *core.Controller, logger *zap.Logger) *ExpenseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExpenseHandler{controller: controller, logger: logger}
}

// mapMutationErrorToStatus maps controller mutation errors to HTTP
// responses. Mutation failures are one-shot notifications: nothing is
// retried and prior state is unchanged.
func mapMutationErrorToStatus(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Not signed in"})
	case errors.Is(err, core.ErrNoEditingTarget):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "No expense is being edited"})
	case errors.Is(err, core.ErrUnknownExpense):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Expense not found"})
	case errors.Is(err, core.ErrConfirmationRequired):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Deletion requires confirm=true"})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Operation failed", Details: err.Error()})
	}
}

// bindExpenseRequest decodes and sanity-checks an expense payload.
func bindExpenseRequest(c *gin.Context) (models.ExpenseRequest, bool) {
	var req models.ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return req, false
	}
	if !req.Category.Valid() {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Unknown category", Details: string(req.Category)})
		return req, false
	}
	return req, true
}

// Create handles POST /api/v1/expenses.
func (h *ExpenseHandler) Create(c *gin.Context) {
	req, ok := bindExpenseRequest(c)
	if !ok {
		return
	}
	if err := h.controller.AddExpense(c.Request.Context(), req.Amount, req.Category, req.Description); err != nil {
		h.logger.Warn("Add expense failed", zap.Error(err))
		mapMutationErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.controller.Snapshot())
}

// StartEdit handles POST /api/v1/expenses/:expenseId/edit: it selects the
// record as the editing target and moves to the edit screen.
func (h *ExpenseHandler) StartEdit(c *gin.Context) {
	expenseID := c.Param("expenseId")
	if err := h.controller.StartEdit(expenseID); err != nil {
		mapMutationErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, h.controller.Snapshot())
}

// Update handles PUT /api/v1/expenses: it writes new field values to the
// record currently being edited.
func (h *ExpenseHandler) Update(c *gin.Context) {
	req, ok := bindExpenseRequest(c)
	if !ok {
		return
	}
	if err := h.controller.UpdateExpense(c.Request.Context(), req.Amount, req.Category, req.Description); err != nil {
		h.logger.Warn("Update expense failed", zap.Error(err))
		mapMutationErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, h.controller.Snapshot())
}

// Delete handles DELETE /api/v1/expenses/:expenseId?confirm=true. The
// confirm parameter carries the user's explicit yes/no decision.
func (h *ExpenseHandler) Delete(c *gin.Context) {
	expenseID := c.Param("expenseId")
	confirmed := c.Query("confirm") == "true"
	if err := h.controller.DeleteExpense(c.Request.Context(), expenseID, confirmed); err != nil {
		h.logger.Warn("Delete expense failed", zap.String("expenseID", expenseID), zap.Error(err))
		mapMutationErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Expense deleted"})
}

// UpdateBudget handles PUT /api/v1/budget.
func (h *ExpenseHandler) UpdateBudget(c *gin.Context) {
	var req models.BudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}
	if err := h.controller.UpdateBudget(c.Request.Context(), req.MonthlyBudget); err != nil {
		h.logger.Warn("Update budget failed", zap.Error(err))
		mapMutationErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, h.controller.Snapshot())
}
