// Package profiles persists user profiles and their experience and
// education entries.
package profiles

import (
	"context"

	"github.com/dmitrijs2005/devconnector/internal/server/models"
)

// Repository is the profile store. At most one profile exists per user and
// per handle; both are enforced by the store so that concurrent writers
// cannot violate them.
type Repository interface {
	FindByUser(ctx context.Context, userID string) (*models.Profile, error)
	FindByHandle(ctx context.Context, handle string) (*models.Profile, error)
	Exists(ctx context.Context, userID string) (bool, error)

	// UpsertForUser creates the user's profile from patch, or merges patch
	// into the existing one. Callers should run it inside a transaction so
	// the row lock is held until commit.
	UpsertForUser(ctx context.Context, userID string, patch *models.ProfilePatch) (*models.Profile, error)

	AppendExperience(ctx context.Context, userID string, e *models.Experience) error
	AppendEducation(ctx context.Context, userID string, e *models.Education) error
	RemoveExperience(ctx context.Context, userID, entryID string) (models.RemoveResult, error)
	RemoveEducation(ctx context.Context, userID, entryID string) (models.RemoveResult, error)

	DeleteForUser(ctx context.Context, userID string) error
}
