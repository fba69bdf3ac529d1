package core

import (
	"regexp"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"expensely-go/internal/models"
)

// remediationURLPattern matches the console URL the backend embeds in a
// missing-index error message.
var remediationURLPattern = regexp.MustCompile(`https://\S+`)

// ClassifySyncError maps a live-subscription failure onto the controller's
// sync-condition taxonomy: a permission error becomes access-denied, a
// missing composite index becomes index-required carrying the remediation
// URL extracted verbatim from the error text, and anything else is a
// generic synchronization failure.
func ClassifySyncError(err error) models.SyncCondition {
	if err == nil {
		return models.SyncCondition{Status: models.SyncOK}
	}
	msg := err.Error()
	switch status.Code(err) {
	case codes.PermissionDenied:
		return models.SyncCondition{Status: models.SyncAccessDenied, Message: msg}
	case codes.FailedPrecondition:
		if strings.Contains(strings.ToLower(msg), "index") {
			if url := remediationURLPattern.FindString(msg); url != "" {
				return models.SyncCondition{Status: models.SyncIndexRequired, URL: url, Message: msg}
			}
		}
		return models.SyncCondition{Status: models.SyncFailed, Message: msg}
	default:
		return models.SyncCondition{Status: models.SyncFailed, Message: msg}
	}
}
