package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"expensely-go/internal/models"
)

const usersCollection = "users"

// ErrAlreadyExists is returned when a Create hits an existing document.
var ErrAlreadyExists = errors.New("document already exists")

// firestoreProfileRepository implements the ProfileRepository interface
// using Firestore.
type firestoreProfileRepository struct {
	client *firestore.Client
}

// NewFirestoreProfileRepository creates a new Firestore-backed
// ProfileRepository.
func NewFirestoreProfileRepository(client *firestore.Client) ProfileRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for ProfileRepository.")
	}
	return &firestoreProfileRepository{client: client}
}

func (r *firestoreProfileRepository) docRef(userID string) *firestore.DocumentRef {
	return r.client.Collection(usersCollection).Doc(userID)
}

// GetByID retrieves the profile document for a user (Firebase Auth UID).
func (r *firestoreProfileRepository) GetByID(ctx context.Context, userID string) (*models.Profile, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for GetByID operation")
	}
	docSnap, err := r.docRef(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("profile for user '%s' not found: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get profile for user '%s': %w", userID, err)
	}
	profile := decodeProfile(docSnap)
	return &profile, nil
}

// Create adds a new profile document. The profile.ID (Firebase Auth UID) is
// used as the Firestore document ID.
func (r *firestoreProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	if profile.ID == "" {
		return errors.New("profile ID cannot be empty for Create operation")
	}
	_, err := r.docRef(profile.ID).Create(ctx, profile)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("profile for user '%s': %w", profile.ID, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create profile for user '%s': %w", profile.ID, err)
	}
	return nil
}

// TouchLastLogin refreshes only the lastLoginAt field of an existing
// profile. createdAt and monthlyBudget are never touched here.
func (r *firestoreProfileRepository) TouchLastLogin(ctx context.Context, userID string) error {
	if userID == "" {
		return errors.New("userID cannot be empty for TouchLastLogin operation")
	}
	_, err := r.docRef(userID).Update(ctx, []firestore.Update{
		{Path: "lastLoginAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("profile for user '%s' not found: %w", userID, ErrNotFound)
		}
		return fmt.Errorf("failed to refresh lastLoginAt for user '%s': %w", userID, err)
	}
	return nil
}

// SetBudget writes monthlyBudget on the profile. If the document is
// unexpectedly missing, it falls back to a merge write carrying the budget.
func (r *firestoreProfileRepository) SetBudget(ctx context.Context, userID string, budget float64) error {
	if userID == "" {
		return errors.New("userID cannot be empty for SetBudget operation")
	}
	_, err := r.docRef(userID).Update(ctx, []firestore.Update{
		{Path: "monthlyBudget", Value: budget},
	})
	if err == nil {
		return nil
	}
	if status.Code(err) != codes.NotFound {
		return fmt.Errorf("failed to update budget for user '%s': %w", userID, err)
	}
	log.Printf("Profile for user '%s' missing during budget update, upserting.", userID)
	_, err = r.docRef(userID).Set(ctx, map[string]interface{}{
		"monthlyBudget": budget,
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to upsert budget for user '%s': %w", userID, err)
	}
	return nil
}

// Watch subscribes to the profile document and forwards a full snapshot on
// every change. The channel closes once ctx is cancelled or a terminal
// error has been delivered.
func (r *firestoreProfileRepository) Watch(ctx context.Context, userID string) <-chan ProfileEvent {
	events := make(chan ProfileEvent, 1)
	go func() {
		defer close(events)
		iter := r.docRef(userID).Snapshots(ctx)
		defer iter.Stop()
		for {
			snap, err := iter.Next()
			if err != nil {
				if ctx.Err() != nil || status.Code(err) == codes.Canceled {
					return
				}
				select {
				case events <- ProfileEvent{Err: err}:
				case <-ctx.Done():
				}
				return
			}
			ev := ProfileEvent{}
			if snap.Exists() {
				profile := decodeProfile(snap)
				ev.Profile = &profile
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events
}

// decodeProfile reads a profile from a raw document snapshot, normalizing
// timestamp fields that may arrive in heterogeneous representations.
func decodeProfile(snap *firestore.DocumentSnapshot) models.Profile {
	data := snap.Data()
	now := time.Now().UTC()
	p := models.Profile{ID: snap.Ref.ID}
	p.Email, _ = data["email"].(string)
	p.DisplayName, _ = data["displayName"].(string)
	p.AvatarURL, _ = data["avatarUrl"].(string)
	p.MonthlyBudget = toFloat(data["monthlyBudget"], models.DefaultMonthlyBudget)
	p.CreatedAt = normalizeTimestamp(data["createdAt"], now)
	p.LastLoginAt = normalizeTimestamp(data["lastLoginAt"], now)
	return p
}

// toFloat coerces a numeric document field, defaulting when absent or of an
// unexpected type.
func toFloat(v interface{}, def float64) float64 {
	switch n := v.(type) {
	case int64:
		return float64(n)
	case float64:
		return n
	default:
		return def
	}
}
