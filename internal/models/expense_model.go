package models

import "time"

// Category is the fixed set of expense categories.
type Category string

const (
	CategoryFood          Category = "food"
	CategoryTransport     Category = "transport"
	CategoryShopping      Category = "shopping"
	CategoryEntertainment Category = "entertainment"
	CategoryHealth        Category = "health"
	CategoryOther         Category = "other"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryFood, CategoryTransport, CategoryShopping,
		CategoryEntertainment, CategoryHealth, CategoryOther:
		return true
	}
	return false
}

// Expense is a single expense record stored at users/{ownerId}/expenses/{id}.
// The ID equals the store-generated document key. Records are ordered by
// OccurredAt descending.
type Expense struct {
	ID          string    `json:"id" firestore:"-"`
	OwnerID     string    `json:"ownerId" firestore:"ownerId"`
	Amount      float64   `json:"amount" firestore:"amount"`
	Category    Category  `json:"category" firestore:"category"`
	Description string    `json:"description" firestore:"description"`
	OccurredAt  time.Time `json:"occurredAt" firestore:"occurredAt"`
}
