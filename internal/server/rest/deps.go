package rest

import (
	"context"

	"github.com/dmitrijs2005/devconnector/internal/server/auth"
	"github.com/dmitrijs2005/devconnector/internal/server/models"
	"github.com/dmitrijs2005/devconnector/internal/server/services"
)

// Service dependencies of the HTTP layer.

type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Login(ctx context.Context, in services.LoginInput) (string, error)
	Current(ctx context.Context, userID string) (*models.User, error)
	DeleteAccount(ctx context.Context, userID string) error
}

type ProfileService interface {
	Get(ctx context.Context, userID string) (*models.Profile, error)
	GetByUser(ctx context.Context, userID string) (*models.Profile, error)
	GetByHandle(ctx context.Context, handle string) (*models.Profile, error)
	Submit(ctx context.Context, userID string, in services.ProfileInput) (*models.Profile, error)
	AddExperience(ctx context.Context, userID string, in services.ExperienceInput) (*models.Profile, error)
	AddEducation(ctx context.Context, userID string, in services.EducationInput) (*models.Profile, error)
	RemoveExperience(ctx context.Context, userID, entryID string) (*models.Profile, error)
	RemoveEducation(ctx context.Context, userID, entryID string) (*models.Profile, error)
}

type PostService interface {
	Create(ctx context.Context, author auth.Identity, in services.PostInput) (*models.Post, error)
	Get(ctx context.Context, postID string) (*models.Post, error)
	Delete(ctx context.Context, userID, postID string) error
	ToggleLike(ctx context.Context, userID, postID string) (*models.Post, error)
	AddComment(ctx context.Context, author auth.Identity, postID string, in services.PostInput) (*models.Post, error)
	DeleteComment(ctx context.Context, userID, postID, commentID string) (*models.Post, error)
}

// Authenticator resolves an Authorization header to an identity.
type Authenticator interface {
	Authenticate(header string) (*auth.Identity, error)
}
