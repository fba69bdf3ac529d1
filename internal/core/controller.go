package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"expensely-go/internal/auth"
	"expensely-go/internal/db"
	"expensely-go/internal/models"
)

// Controller operation errors. All leave the controller's state unchanged.
var (
	ErrNotAuthenticated     = errors.New("no authenticated identity")
	ErrNoEditingTarget      = errors.New("no expense is being edited")
	ErrUnknownExpense       = errors.New("expense not found in current list")
	ErrConfirmationRequired = errors.New("deletion requires explicit confirmation")
)

// ensureTimeout bounds the best-effort profile ensure/refresh on sign-in.
const ensureTimeout = 10 * time.Second

// Controller is the view router / session controller: it owns the active
// screen, the authenticated identity, the live expense list, the budget and
// the record currently being edited. It reacts to identity-provider
// notifications and store snapshots, and exposes the navigation and
// mutation operations the presentation layer calls.
//
// Identity callbacks, snapshot deliveries and mutation calls all run on
// their own goroutines; the mutex serializes every state transition, which
// is this controller's rendition of the SPA's cooperative event loop. The
// profile and expense subscriptions remain independent streams: a budget
// update and a list update may land in either order.
type Controller struct {
	logger        *zap.Logger
	provider      auth.IdentityProvider
	profiles      db.ProfileRepository
	expenses      db.ExpenseRepository
	audit         AuditService
	defaultBudget float64

	mu            sync.Mutex
	loading       bool
	screen        models.Screen
	identity      *models.Identity
	profile       *models.Profile
	expenseList   []models.Expense
	editing       *models.Expense
	syncCondition models.SyncCondition

	// watchGen guards against deliveries from a torn-down subscription
	// pair landing in a later session's state.
	watchGen    uint64
	watchCancel context.CancelFunc
}

// State is an atomic snapshot of the controller handed to the presentation
// layer.
type State struct {
	Loading       bool                 `json:"loading"`
	Screen        models.Screen        `json:"screen"`
	Identity      *models.Identity     `json:"identity,omitempty"`
	Expenses      []models.Expense     `json:"expenses"`
	MonthlyBudget float64              `json:"monthlyBudget"`
	Editing       *models.Expense      `json:"editing,omitempty"`
	Sync          models.SyncCondition `json:"sync"`
	Report        ReportSummary        `json:"report"`
}

// ReportSummary is the month-to-date budget report computed from the
// current expense list, so the dashboard and report screens render from
// controller state alone.
type ReportSummary struct {
	MonthToDate float64                     `json:"monthToDate"`
	Remaining   float64                     `json:"remaining"`
	ByCategory  map[models.Category]float64 `json:"byCategory"`
}

// NewController creates the session controller and subscribes it to
// identity-provider notifications. The initial state is signed out on the
// login screen with the loading flag set, covering both a fresh visitor and
// a session being restored.
func NewController(provider auth.IdentityProvider, profiles db.ProfileRepository, expenses db.ExpenseRepository, audit AuditService, defaultBudget float64, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultBudget <= 0 {
		defaultBudget = models.DefaultMonthlyBudget
	}
	c := &Controller{
		logger:        logger,
		provider:      provider,
		profiles:      profiles,
		expenses:      expenses,
		audit:         audit,
		defaultBudget: defaultBudget,
		loading:       true,
		screen:        models.ScreenLogin,
		syncCondition: models.SyncCondition{Status: models.SyncOK},
	}
	provider.SubscribeIdentityChanges(c.onIdentityChange)
	return c
}

// onIdentityChange is the identity-provider callback: a non-nil identity
// drives the SIGNED_OUT -> AUTHENTICATED transition, nil drives the
// reverse.
func (c *Controller) onIdentityChange(identity *models.Identity) {
	c.mu.Lock()
	c.loading = false

	if identity == nil {
		c.clearSessionLocked()
		c.mu.Unlock()
		return
	}

	sameIdentity := c.identity != nil && c.identity.ID == identity.ID
	if c.identity != nil && !sameIdentity {
		// Identity switch: the prior subscription pair is torn down
		// before the new one is established.
		c.teardownWatchesLocked()
		c.profile = nil
		c.expenseList = nil
		c.editing = nil
		// The edit screen cannot stay mounted without its target.
		if c.screen == models.ScreenEditExpense {
			c.screen = models.ScreenDashboard
		}
	}
	c.identity = identity
	// A sign-in from the login or register screen advances to the
	// dashboard. Any other active screen is preserved so a restored
	// session keeps its deep-linked screen.
	if c.screen == models.ScreenLogin || c.screen == models.ScreenRegister {
		c.screen = models.ScreenDashboard
	}
	if !sameIdentity || c.watchCancel == nil {
		c.syncCondition = models.SyncCondition{Status: models.SyncOK}
		c.startWatchesLocked(identity.ID)
	}
	c.mu.Unlock()

	c.ensureProfile(identity)
}

// ensureProfile creates the account profile on first sign-in or refreshes
// lastLoginAt on subsequent ones. Profile sync is best effort: a failure is
// logged and the session proceeds as authenticated anyway.
func (c *Controller) ensureProfile(identity *models.Identity) {
	ctx, cancel := context.WithTimeout(context.Background(), ensureTimeout)
	defer cancel()

	_, err := c.profiles.GetByID(ctx, identity.ID)
	switch {
	case err == nil:
		if err := c.profiles.TouchLastLogin(ctx, identity.ID); err != nil {
			c.logger.Warn("Failed to refresh lastLoginAt", zap.String("userID", identity.ID), zap.Error(err))
		}
	case errors.Is(err, db.ErrNotFound):
		now := time.Now().UTC()
		profile := &models.Profile{
			ID:            identity.ID,
			Email:         identity.Email,
			DisplayName:   identity.DisplayName,
			AvatarURL:     identity.AvatarURL,
			MonthlyBudget: c.defaultBudget,
			CreatedAt:     now,
			LastLoginAt:   now,
		}
		createErr := c.profiles.Create(ctx, profile)
		if createErr == nil {
			return
		}
		if errors.Is(createErr, db.ErrAlreadyExists) {
			// Lost a creation race; the winner's document stands.
			if err := c.profiles.TouchLastLogin(ctx, identity.ID); err != nil {
				c.logger.Warn("Failed to refresh lastLoginAt after create race", zap.String("userID", identity.ID), zap.Error(err))
			}
			return
		}
		c.logger.Warn("Failed to create account profile", zap.String("userID", identity.ID), zap.Error(createErr))
	default:
		c.logger.Warn("Failed to read account profile", zap.String("userID", identity.ID), zap.Error(err))
	}
}

// startWatchesLocked opens the profile and expense subscriptions for the
// given identity. Caller holds c.mu.
func (c *Controller) startWatchesLocked(userID string) {
	ctx, cancel := context.WithCancel(context.Background())
	c.watchCancel = cancel
	c.watchGen++
	gen := c.watchGen

	profileEvents := c.profiles.Watch(ctx, userID)
	expenseEvents := c.expenses.Watch(ctx, userID)
	go c.consumeProfileEvents(gen, profileEvents)
	go c.consumeExpenseEvents(gen, expenseEvents)
}

// teardownWatchesLocked cancels the active subscription pair. Deliveries
// already in flight are fenced off by the generation counter. Caller holds
// c.mu.
func (c *Controller) teardownWatchesLocked() {
	if c.watchCancel != nil {
		c.watchCancel()
		c.watchCancel = nil
	}
	c.watchGen++
}

// clearSessionLocked drives AUTHENTICATED -> SIGNED_OUT: subscriptions go
// down, identity, profile, expense list and editing target are cleared, and
// the screen resets to login. Caller holds c.mu.
func (c *Controller) clearSessionLocked() {
	c.teardownWatchesLocked()
	c.identity = nil
	c.profile = nil
	c.expenseList = nil
	c.editing = nil
	c.syncCondition = models.SyncCondition{Status: models.SyncOK}
	c.screen = models.ScreenLogin
}

func (c *Controller) consumeProfileEvents(gen uint64, events <-chan db.ProfileEvent) {
	for ev := range events {
		c.mu.Lock()
		if c.watchGen != gen {
			c.mu.Unlock()
			return
		}
		switch {
		case ev.Err != nil:
			c.syncCondition = ClassifySyncError(ev.Err)
			c.logger.Error("Profile subscription failed",
				zap.String("condition", string(c.syncCondition.Status)), zap.Error(ev.Err))
		case ev.Profile != nil:
			c.profile = ev.Profile
		default:
			// Document does not exist yet; the best-effort ensure on
			// sign-in creates it.
		}
		c.mu.Unlock()
	}
}

func (c *Controller) consumeExpenseEvents(gen uint64, events <-chan db.ExpenseEvent) {
	for ev := range events {
		c.mu.Lock()
		if c.watchGen != gen {
			c.mu.Unlock()
			return
		}
		if ev.Err != nil {
			c.syncCondition = ClassifySyncError(ev.Err)
			c.logger.Error("Expense subscription failed",
				zap.String("condition", string(c.syncCondition.Status)), zap.Error(ev.Err))
		} else {
			c.expenseList = ev.Expenses
		}
		c.mu.Unlock()
	}
}

// SignOut ends the session via the identity provider; the identity-change
// notification performs the actual state reset.
func (c *Controller) SignOut(ctx context.Context) error {
	return c.provider.SignOut(ctx)
}

// Navigate sets the active screen. Navigating anywhere other than the edit
// screen clears the editing target so stale edit context never leaks into
// unrelated screens. Navigating to the edit screen without an editing
// target is rejected; StartEdit is the only way in.
func (c *Controller) Navigate(screen models.Screen) error {
	if !screen.Valid() {
		return fmt.Errorf("unknown screen %q", screen)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if screen == models.ScreenEditExpense && c.editing == nil {
		return ErrNoEditingTarget
	}
	c.screen = screen
	if screen != models.ScreenEditExpense {
		c.editing = nil
	}
	return nil
}

// StartEdit selects an expense from the current list for modification and
// moves to the edit screen.
func (c *Controller) StartEdit(expenseID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.identity == nil {
		return ErrNotAuthenticated
	}
	for i := range c.expenseList {
		if c.expenseList[i].ID == expenseID {
			record := c.expenseList[i]
			c.editing = &record
			c.screen = models.ScreenEditExpense
			return nil
		}
	}
	return ErrUnknownExpense
}

// AddExpense writes a new record against the current identity and, on
// success, navigates to the dashboard. Amount and description validity is
// the calling form's responsibility. A failed write leaves all state
// unchanged and is surfaced to the caller.
func (c *Controller) AddExpense(ctx context.Context, amount float64, category models.Category, description string) error {
	identity, err := c.currentIdentity()
	if err != nil {
		return err
	}
	expense := &models.Expense{
		OwnerID:     identity.ID,
		Amount:      amount,
		Category:    category,
		Description: description,
		OccurredAt:  time.Now().UTC(),
	}
	id, err := c.expenses.Create(ctx, expense)
	if err != nil {
		return fmt.Errorf("add expense: %w", err)
	}
	c.audit.Record(ctx, identity.ID, models.AuditExpenseAdd, id, map[string]interface{}{
		"amount":   amount,
		"category": string(category),
	})
	c.routeAfterMutation(identity.ID)
	return nil
}

// UpdateExpense writes new field values to the record currently being
// edited, preserving its id and occurredAt. On success the editing target
// is cleared and the screen advances to the dashboard.
func (c *Controller) UpdateExpense(ctx context.Context, amount float64, category models.Category, description string) error {
	c.mu.Lock()
	if c.identity == nil {
		c.mu.Unlock()
		return ErrNotAuthenticated
	}
	if c.editing == nil {
		c.mu.Unlock()
		return ErrNoEditingTarget
	}
	identity := *c.identity
	target := *c.editing
	c.mu.Unlock()

	target.Amount = amount
	target.Category = category
	target.Description = description
	if err := c.expenses.Update(ctx, &target); err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	c.audit.Record(ctx, identity.ID, models.AuditExpenseUpdate, target.ID, map[string]interface{}{
		"amount":   amount,
		"category": string(category),
	})
	c.routeAfterMutation(identity.ID)
	return nil
}

// DeleteExpense removes a record. The confirmed flag carries the user's
// explicit yes/no decision; without it, nothing is deleted. Once confirmed
// the deletion is unconditional.
func (c *Controller) DeleteExpense(ctx context.Context, expenseID string, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	identity, err := c.currentIdentity()
	if err != nil {
		return err
	}
	if err := c.expenses.Delete(ctx, identity.ID, expenseID); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	c.audit.Record(ctx, identity.ID, models.AuditExpenseDelete, expenseID, nil)

	c.mu.Lock()
	if c.identity != nil && c.identity.ID == identity.ID &&
		c.editing != nil && c.editing.ID == expenseID {
		// The record under edit is gone; the edit screen has nothing
		// left to show.
		c.editing = nil
		if c.screen == models.ScreenEditExpense {
			c.screen = models.ScreenDashboard
		}
	}
	c.mu.Unlock()
	return nil
}

// UpdateBudget writes monthlyBudget on the account profile. The repository
// self-heals a missing profile document with a merge write.
func (c *Controller) UpdateBudget(ctx context.Context, budget float64) error {
	identity, err := c.currentIdentity()
	if err != nil {
		return err
	}
	if err := c.profiles.SetBudget(ctx, identity.ID, budget); err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	c.audit.Record(ctx, identity.ID, models.AuditBudgetUpdate, identity.ID, map[string]interface{}{
		"monthlyBudget": budget,
	})
	return nil
}

// CurrentIdentity returns the authenticated identity, or nil while signed
// out.
func (c *Controller) CurrentIdentity() *models.Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.identity == nil {
		return nil
	}
	identity := *c.identity
	return &identity
}

// Snapshot returns a consistent copy of the controller's presentation
// state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := State{
		Loading:       c.loading,
		Screen:        c.screen,
		MonthlyBudget: c.defaultBudget,
		Sync:          c.syncCondition,
		Expenses:      make([]models.Expense, len(c.expenseList)),
	}
	copy(state.Expenses, c.expenseList)
	if state.Sync.Status == "" {
		state.Sync.Status = models.SyncOK
	}
	if c.identity != nil {
		identity := *c.identity
		state.Identity = &identity
	}
	if c.profile != nil {
		state.MonthlyBudget = c.profile.MonthlyBudget
	}
	if c.editing != nil {
		editing := *c.editing
		state.Editing = &editing
	}
	state.Report = buildReport(state.Expenses, state.MonthlyBudget, time.Now().UTC())
	return state
}

// currentIdentity snapshots the identity for a mutation, failing when
// signed out.
func (c *Controller) currentIdentity() (models.Identity, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.identity == nil {
		return models.Identity{}, ErrNotAuthenticated
	}
	return *c.identity, nil
}

// routeAfterMutation advances the screen to the dashboard after a
// successful add or update, clearing any editing target. The guard keeps a
// completion that raced a sign-out or identity switch from touching the new
// session's screen.
func (c *Controller) routeAfterMutation(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.identity == nil || c.identity.ID != userID {
		return
	}
	c.screen = models.ScreenDashboard
	c.editing = nil
}

// buildReport computes the month-to-date spend and per-category breakdown
// for the report screen.
func buildReport(expenses []models.Expense, budget float64, now time.Time) ReportSummary {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	report := ReportSummary{ByCategory: make(map[models.Category]float64)}
	for _, e := range expenses {
		if e.OccurredAt.Before(monthStart) || e.OccurredAt.After(now) {
			continue
		}
		report.MonthToDate += e.Amount
		report.ByCategory[e.Category] += e.Amount
	}
	report.Remaining = budget - report.MonthToDate
	return report
}
