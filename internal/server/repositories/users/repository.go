package users

import (
	"context"

	"github.com/dmitrijs2005/devconnector/internal/server/models"
)

// Repository persists user accounts. Email uniqueness is enforced by the
// store itself, so concurrent creates with the same email cannot both win.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Delete(ctx context.Context, id string) error
}
