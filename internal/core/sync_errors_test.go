package core

import (
	"errors"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"expensely-go/internal/models"
)

func TestClassifySyncError(t *testing.T) {
	indexURL := "https://console.firebase.google.com/v1/r/project/demo/firestore/indexes?create_composite=ClFwcm9q"

	tests := []struct {
		name       string
		err        error
		wantStatus models.SyncStatus
		wantURL    string
	}{
		{
			name:       "nil error is healthy",
			err:        nil,
			wantStatus: models.SyncOK,
		},
		{
			name:       "permission denied maps to access denied",
			err:        status.Error(codes.PermissionDenied, "Missing or insufficient permissions."),
			wantStatus: models.SyncAccessDenied,
		},
		{
			name:       "missing index carries the remediation URL verbatim",
			err:        status.Error(codes.FailedPrecondition, "The query requires an index. You can create it here: "+indexURL),
			wantStatus: models.SyncIndexRequired,
			wantURL:    indexURL,
		},
		{
			name:       "failed precondition without index text is generic",
			err:        status.Error(codes.FailedPrecondition, "the Cloud Firestore API is not available"),
			wantStatus: models.SyncFailed,
		},
		{
			name:       "index text without a URL is generic",
			err:        status.Error(codes.FailedPrecondition, "the query requires an index"),
			wantStatus: models.SyncFailed,
		},
		{
			name:       "unavailable is generic",
			err:        status.Error(codes.Unavailable, "transport is closing"),
			wantStatus: models.SyncFailed,
		},
		{
			name:       "non-grpc error is generic",
			err:        errors.New("connection reset by peer"),
			wantStatus: models.SyncFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifySyncError(tt.err)
			if got.Status != tt.wantStatus {
				t.Fatalf("status = %s, want %s", got.Status, tt.wantStatus)
			}
			if got.URL != tt.wantURL {
				t.Fatalf("url = %q, want %q", got.URL, tt.wantURL)
			}
			if tt.err != nil && got.Message == "" {
				t.Fatalf("expected the original error text to be preserved")
			}
		})
	}
}
