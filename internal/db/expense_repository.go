package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"expensely-go/internal/models"
)

const expensesCollection = "expenses"

// firestoreExpenseRepository implements the ExpenseRepository interface
// using Firestore. Records live in the per-user subcollection
// users/{ownerId}/expenses.
type firestoreExpenseRepository struct {
	client *firestore.Client
}

// NewFirestoreExpenseRepository creates a new Firestore-backed
// ExpenseRepository.
func NewFirestoreExpenseRepository(client *firestore.Client) ExpenseRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for ExpenseRepository.")
	}
	return &firestoreExpenseRepository{client: client}
}

func (r *firestoreExpenseRepository) collection(ownerID string) *firestore.CollectionRef {
	return r.client.Collection(usersCollection).Doc(ownerID).Collection(expensesCollection)
}

// Create writes a new expense record with a store-generated document ID and
// returns that ID. The record's ID field is set before the write so the
// stored document and the returned value agree.
func (r *firestoreExpenseRepository) Create(ctx context.Context, expense *models.Expense) (string, error) {
	if expense.OwnerID == "" {
		return "", errors.New("ownerID cannot be empty for Create operation")
	}
	docRef := r.collection(expense.OwnerID).NewDoc()
	expense.ID = docRef.ID
	if _, err := docRef.Create(ctx, expense); err != nil {
		return "", fmt.Errorf("failed to create expense for owner '%s': %w", expense.OwnerID, err)
	}
	return docRef.ID, nil
}

// Update overwrites the mutable fields of an existing record. The record's
// ID and occurredAt are preserved as passed in.
func (r *firestoreExpenseRepository) Update(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" || expense.OwnerID == "" {
		return errors.New("expense ID and ownerID cannot be empty for Update operation")
	}
	_, err := r.collection(expense.OwnerID).Doc(expense.ID).Update(ctx, []firestore.Update{
		{Path: "amount", Value: expense.Amount},
		{Path: "category", Value: expense.Category},
		{Path: "description", Value: expense.Description},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("expense '%s' not found for owner '%s': %w", expense.ID, expense.OwnerID, ErrNotFound)
		}
		return fmt.Errorf("failed to update expense '%s': %w", expense.ID, err)
	}
	return nil
}

// Delete removes an expense record. Deletion is unconditional; there is no
// soft delete and no undo.
func (r *firestoreExpenseRepository) Delete(ctx context.Context, ownerID, expenseID string) error {
	if ownerID == "" || expenseID == "" {
		return errors.New("ownerID and expenseID cannot be empty for Delete operation")
	}
	if _, err := r.collection(ownerID).Doc(expenseID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete expense '%s' for owner '%s': %w", expenseID, ownerID, err)
	}
	return nil
}

// Watch subscribes to the expense collection ordered by occurredAt
// descending (server-side). Every delivery carries the full replacement
// list. The channel closes once ctx is cancelled or a terminal error has
// been delivered.
func (r *firestoreExpenseRepository) Watch(ctx context.Context, ownerID string) <-chan ExpenseEvent {
	events := make(chan ExpenseEvent, 1)
	go func() {
		defer close(events)
		query := r.collection(ownerID).OrderBy("occurredAt", firestore.Desc)
		it := query.Snapshots(ctx)
		defer it.Stop()
		for {
			qsnap, err := it.Next()
			if err != nil {
				if ctx.Err() != nil || status.Code(err) == codes.Canceled {
					return
				}
				select {
				case events <- ExpenseEvent{Err: err}:
				case <-ctx.Done():
				}
				return
			}
			expenses := make([]models.Expense, 0)
			for {
				doc, err := qsnap.Documents.Next()
				if err == iterator.Done {
					break
				}
				if err != nil {
					log.Printf("Error iterating expense snapshot for owner '%s': %v. Skipping delivery.", ownerID, err)
					expenses = nil
					break
				}
				expenses = append(expenses, decodeExpense(doc))
			}
			if expenses == nil {
				continue
			}
			select {
			case events <- ExpenseEvent{Expenses: expenses}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events
}

// decodeExpense reads an expense from a raw document snapshot. occurredAt
// is normalized from whatever representation the document carries; an
// unparseable value falls back to now rather than failing the snapshot.
func decodeExpense(doc *firestore.DocumentSnapshot) models.Expense {
	data := doc.Data()
	e := models.Expense{ID: doc.Ref.ID}
	e.OwnerID, _ = data["ownerId"].(string)
	e.Amount = toFloat(data["amount"], 0)
	if cat, ok := data["category"].(string); ok {
		e.Category = models.Category(cat)
	}
	if !e.Category.Valid() {
		e.Category = models.CategoryOther
	}
	e.Description, _ = data["description"].(string)
	e.OccurredAt = normalizeTimestamp(data["occurredAt"], time.Now().UTC())
	return e
}
