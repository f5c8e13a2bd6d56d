// Package repository persists per-user conversation state. Every backend
// implements the same optimistic concurrency contract: SaveUser succeeds only
// when the stored version still equals the version that was loaded.
package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"travel-agent/internal/domain"
)

const ttlDuration = 30 * 24 * time.Hour // 30-day TTL

// ErrVersionConflict reports that another writer saved the user record after
// it was loaded.
var ErrVersionConflict = errors.New("repository: user state version conflict")

// UserStore loads and saves user state.
type UserStore interface {
	// LoadUser returns the stored state, or a zero-version state carrying only
	// the user id when none exists.
	LoadUser(ctx context.Context, userID string) (domain.UserState, error)
	// SaveUser writes state when its Version matches the stored one and then
	// advances state.Version.
	SaveUser(ctx context.Context, state *domain.UserState) error
}

// NormalizeUserID trims and lower-cases an email-style identifier.
func NormalizeUserID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

func validateSave(state *domain.UserState) error {
	if state == nil {
		return errors.New("repository: state must not be nil")
	}
	if NormalizeUserID(state.UserID) == "" {
		return errors.New("repository: user id is required")
	}
	return nil
}

// ttlValue returns a Unix timestamp 30 days after now.
func ttlValue(now time.Time) int64 {
	return now.Add(ttlDuration).Unix()
}
