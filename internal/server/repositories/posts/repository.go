// Package posts persists posts together with their likes and comments.
package posts

import (
	"context"

	"github.com/dmitrijs2005/devconnector/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
	Get(ctx context.Context, postID string) (*models.Post, error)
	Delete(ctx context.Context, postID string) error

	// AddLike and RemoveLike report whether the like set changed.
	AddLike(ctx context.Context, postID, userID string) (bool, error)
	RemoveLike(ctx context.Context, postID, userID string) (bool, error)

	AddComment(ctx context.Context, postID string, c *models.Comment) error
	GetComment(ctx context.Context, postID, commentID string) (*models.Comment, error)
	DeleteComment(ctx context.Context, postID, commentID string) error
}
