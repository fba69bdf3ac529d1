package models

import "time"

// DefaultMonthlyBudget is assigned to a profile created on first sign-in.
const DefaultMonthlyBudget = 10000

// Profile is the per-account document stored at users/{identityId}.
// It is created lazily on the first successful authentication; subsequent
// authentications only refresh LastLoginAt.
type Profile struct {
	ID            string    `json:"id" firestore:"-"` // Firebase Auth UID, the document ID
	Email         string    `json:"email" firestore:"email"`
	DisplayName   string    `json:"displayName,omitempty" firestore:"displayName,omitempty"`
	AvatarURL     string    `json:"avatarUrl,omitempty" firestore:"avatarUrl,omitempty"`
	MonthlyBudget float64   `json:"monthlyBudget" firestore:"monthlyBudget"`
	CreatedAt     time.Time `json:"createdAt" firestore:"createdAt"`
	LastLoginAt   time.Time `json:"lastLoginAt" firestore:"lastLoginAt"`
}
