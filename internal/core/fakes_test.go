package core

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"expensely-go/internal/auth"
	"expensely-go/internal/db"
	"expensely-go/internal/models"
)

// fakeProvider is an in-memory IdentityProvider for controller tests. Tests
// drive the session by emitting identity-change notifications directly.
type fakeProvider struct {
	mu        sync.Mutex
	callbacks []auth.IdentityChangeCallback
}

func (p *fakeProvider) emit(identity *models.Identity) {
	p.mu.Lock()
	callbacks := make([]auth.IdentityChangeCallback, len(p.callbacks))
	copy(callbacks, p.callbacks)
	p.mu.Unlock()
	for _, cb := range callbacks {
		cb(identity)
	}
}

func (p *fakeProvider) Authenticate(ctx context.Context, email, password string) (*auth.SignInResult, error) {
	return nil, nil
}

func (p *fakeProvider) SignUp(ctx context.Context, email, password, displayName string) (*auth.SignInResult, error) {
	return nil, nil
}

func (p *fakeProvider) BeginFederatedAuthentication(ctx context.Context, provider string) (string, string, error) {
	return "", "", nil
}

func (p *fakeProvider) ResolveRedirectResult(ctx context.Context, requestURI, sessionID string) (*auth.SignInResult, error) {
	return nil, nil
}

func (p *fakeProvider) SendPasswordReset(ctx context.Context, email string) error { return nil }

func (p *fakeProvider) SignOut(ctx context.Context) error {
	p.emit(nil)
	return nil
}

func (p *fakeProvider) SubscribeIdentityChanges(cb auth.IdentityChangeCallback) {
	p.mu.Lock()
	p.callbacks = append(p.callbacks, cb)
	p.mu.Unlock()
}

type profileSub struct {
	userID string
	ch     chan db.ProfileEvent
}

type expenseSub struct {
	userID string
	ch     chan db.ExpenseEvent
}

// memoryStore is an in-memory document store double implementing both
// ProfileRepository and ExpenseRepository. Every mutation broadcasts a full
// replacement snapshot to live subscribers, mirroring the backend's push
// behavior.
type memoryStore struct {
	mu          sync.RWMutex
	profiles    map[string]models.Profile
	expenses    map[string]map[string]models.Expense
	nextID      int
	profileSubs []*profileSub
	expenseSubs []*expenseSub
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		profiles: make(map[string]models.Profile),
		expenses: make(map[string]map[string]models.Expense),
	}
}

func (s *memoryStore) GetByID(ctx context.Context, userID string) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &p, nil
}

func (s *memoryStore) Create(ctx context.Context, profile *models.Profile) error {
	s.mu.Lock()
	if _, exists := s.profiles[profile.ID]; exists {
		s.mu.Unlock()
		return db.ErrAlreadyExists
	}
	s.profiles[profile.ID] = *profile
	s.mu.Unlock()
	s.broadcastProfile(profile.ID)
	return nil
}

func (s *memoryStore) TouchLastLogin(ctx context.Context, userID string) error {
	s.mu.Lock()
	p, ok := s.profiles[userID]
	if !ok {
		s.mu.Unlock()
		return db.ErrNotFound
	}
	p.LastLoginAt = time.Now().UTC()
	s.profiles[userID] = p
	s.mu.Unlock()
	s.broadcastProfile(userID)
	return nil
}

func (s *memoryStore) SetBudget(ctx context.Context, userID string, budget float64) error {
	s.mu.Lock()
	p, ok := s.profiles[userID]
	if !ok {
		// Mirror the merge-write fallback of the real repository.
		p = models.Profile{ID: userID}
	}
	p.MonthlyBudget = budget
	s.profiles[userID] = p
	s.mu.Unlock()
	s.broadcastProfile(userID)
	return nil
}

func (s *memoryStore) Watch(ctx context.Context, userID string) <-chan db.ProfileEvent {
	sub := &profileSub{userID: userID, ch: make(chan db.ProfileEvent, 32)}
	s.mu.Lock()
	s.profileSubs = append(s.profileSubs, sub)
	sub.ch <- s.profileEventLocked(userID)
	s.mu.Unlock()
	go func() {
		<-ctx.Done()
		s.mu.Lock()
		for i, existing := range s.profileSubs {
			if existing == sub {
				s.profileSubs = append(s.profileSubs[:i], s.profileSubs[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
		close(sub.ch)
	}()
	return sub.ch
}

func (s *memoryStore) CreateExpense(ctx context.Context, expense *models.Expense) (string, error) {
	s.mu.Lock()
	s.nextID++
	expense.ID = "exp-" + strconv.Itoa(s.nextID)
	if s.expenses[expense.OwnerID] == nil {
		s.expenses[expense.OwnerID] = make(map[string]models.Expense)
	}
	s.expenses[expense.OwnerID][expense.ID] = *expense
	s.mu.Unlock()
	s.broadcastExpenses(expense.OwnerID)
	return expense.ID, nil
}

func (s *memoryStore) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	s.mu.Lock()
	owned := s.expenses[expense.OwnerID]
	existing, ok := owned[expense.ID]
	if !ok {
		s.mu.Unlock()
		return db.ErrNotFound
	}
	existing.Amount = expense.Amount
	existing.Category = expense.Category
	existing.Description = expense.Description
	owned[expense.ID] = existing
	s.mu.Unlock()
	s.broadcastExpenses(expense.OwnerID)
	return nil
}

func (s *memoryStore) DeleteExpense(ctx context.Context, ownerID, expenseID string) error {
	s.mu.Lock()
	delete(s.expenses[ownerID], expenseID)
	s.mu.Unlock()
	s.broadcastExpenses(ownerID)
	return nil
}

func (s *memoryStore) WatchExpenses(ctx context.Context, ownerID string) <-chan db.ExpenseEvent {
	sub := &expenseSub{userID: ownerID, ch: make(chan db.ExpenseEvent, 32)}
	s.mu.Lock()
	s.expenseSubs = append(s.expenseSubs, sub)
	sub.ch <- db.ExpenseEvent{Expenses: s.expenseListLocked(ownerID)}
	s.mu.Unlock()
	go func() {
		<-ctx.Done()
		s.mu.Lock()
		for i, existing := range s.expenseSubs {
			if existing == sub {
				s.expenseSubs = append(s.expenseSubs[:i], s.expenseSubs[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
		close(sub.ch)
	}()
	return sub.ch
}

// failExpenseSubscriptions delivers a terminal error on every live expense
// subscription, standing in for a backend-side query failure.
func (s *memoryStore) failExpenseSubscriptions(err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sub := range s.expenseSubs {
		sub.ch <- db.ExpenseEvent{Err: err}
	}
}

func (s *memoryStore) expenseSubscriberCount(ownerID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, sub := range s.expenseSubs {
		if sub.userID == ownerID {
			n++
		}
	}
	return n
}

func (s *memoryStore) profileEventLocked(userID string) db.ProfileEvent {
	if p, ok := s.profiles[userID]; ok {
		profile := p
		return db.ProfileEvent{Profile: &profile}
	}
	return db.ProfileEvent{}
}

func (s *memoryStore) expenseListLocked(ownerID string) []models.Expense {
	list := make([]models.Expense, 0, len(s.expenses[ownerID]))
	for _, e := range s.expenses[ownerID] {
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].OccurredAt.After(list[j].OccurredAt)
	})
	return list
}

func (s *memoryStore) broadcastProfile(userID string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ev := s.profileEventLocked(userID)
	for _, sub := range s.profileSubs {
		if sub.userID == userID {
			sub.ch <- ev
		}
	}
}

func (s *memoryStore) broadcastExpenses(ownerID string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.expenseListLocked(ownerID)
	for _, sub := range s.expenseSubs {
		if sub.userID == ownerID {
			sub.ch <- db.ExpenseEvent{Expenses: list}
		}
	}
}

// expenseRepo adapts memoryStore to the db.ExpenseRepository interface.
type expenseRepo struct{ store *memoryStore }

func (r expenseRepo) Create(ctx context.Context, expense *models.Expense) (string, error) {
	return r.store.CreateExpense(ctx, expense)
}

func (r expenseRepo) Update(ctx context.Context, expense *models.Expense) error {
	return r.store.UpdateExpense(ctx, expense)
}

func (r expenseRepo) Delete(ctx context.Context, ownerID, expenseID string) error {
	return r.store.DeleteExpense(ctx, ownerID, expenseID)
}

func (r expenseRepo) Watch(ctx context.Context, ownerID string) <-chan db.ExpenseEvent {
	return r.store.WatchExpenses(ctx, ownerID)
}

// recordingAudit captures audit entries for assertions.
type recordingAudit struct {
	mu      sync.Mutex
	entries []models.AuditLog
}

func (a *recordingAudit) Record(ctx context.Context, userID, action, targetID string, details map[string]interface{}) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, models.AuditLog{
		UserID:   userID,
		Action:   action,
		TargetID: targetID,
		Details:  details,
	})
}

func (a *recordingAudit) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.Action)
	}
	return out
}
