package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/devconnector/internal/common"
	"github.com/dmitrijs2005/devconnector/internal/dbx"
	"github.com/dmitrijs2005/devconnector/internal/server/auth"
	"github.com/dmitrijs2005/devconnector/internal/server/models"
	"github.com/dmitrijs2005/devconnector/internal/server/repositories/repomanager"
)

type PostService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewPostService(db *sql.DB, m repomanager.RepositoryManager) *PostService {
	return &PostService{db: db, repomanager: m}
}

// Create publishes a post; name and avatar come from the author's identity.
func (s *PostService) Create(ctx context.Context, author auth.Identity, in PostInput) (*models.Post, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	post, err := s.repomanager.Posts(s.db).Create(ctx, &models.Post{
		UserID: author.ID,
		Text:   strings.TrimSpace(in.Text),
		Name:   author.Name,
		Avatar: author.Avatar,
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error creating post: %w", err)
	}
	return post, nil
}

func (s *PostService) Get(ctx context.Context, postID string) (*models.Post, error) {
	post, err := s.repomanager.Posts(s.db).Get(ctx, postID)
	if err != nil {
		return nil, passNotFound(err, "error loading post")
	}
	return post, nil
}

// Delete removes a post. Only its author may do so.
func (s *PostService) Delete(ctx context.Context, userID, postID string) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Posts(tx)
		post, err := repo.Get(ctx, postID)
		if err != nil {
			return err
		}
		if post.UserID != userID {
			return common.ErrForbidden
		}
		return repo.Delete(ctx, postID)
	})
	if err != nil {
		return passNotFound(err, "error deleting post")
	}
	return nil
}

// ToggleLike likes the post, or removes the caller's like when present.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID string) (*models.Post, error) {
	return s.modify(ctx, postID, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Posts(tx)
		removed, err := repo.RemoveLike(ctx, postID, userID)
		if err != nil || removed {
			return err
		}
		_, err = repo.AddLike(ctx, postID, userID)
		return err
	})
}

// AddComment prepends a comment authored by the caller.
func (s *PostService) AddComment(ctx context.Context, author auth.Identity, postID string, in PostInput) (*models.Post, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	return s.modify(ctx, postID, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Posts(tx).AddComment(ctx, postID, &models.Comment{
			UserID: author.ID,
			Text:   strings.TrimSpace(in.Text),
			Name:   author.Name,
			Avatar: author.Avatar,
		})
	})
}

// DeleteComment removes a comment. Only the comment's author may do so.
func (s *PostService) DeleteComment(ctx context.Context, userID, postID, commentID string) (*models.Post, error) {
	return s.modify(ctx, postID, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Posts(tx)
		c, err := repo.GetComment(ctx, postID, commentID)
		if err != nil {
			return err
		}
		if c.UserID != userID {
			return common.ErrForbidden
		}
		return repo.DeleteComment(ctx, postID, commentID)
	})
}

// modify checks the post exists, runs fn and returns the post as committed.
func (s *PostService) modify(ctx context.Context, postID string, fn func(ctx context.Context, tx dbx.DBTX) error) (*models.Post, error) {
	var post *models.Post
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Posts(tx)
		if _, err := repo.Get(ctx, postID); err != nil {
			return err
		}
		if err := fn(ctx, tx); err != nil {
			return err
		}
		var err error
		post, err = repo.Get(ctx, postID)
		return err
	})
	if err != nil {
		return nil, passNotFound(err, "error updating post")
	}
	return post, nil
}

// passNotFound keeps domain errors intact and wraps everything else.
func passNotFound(err error, msg string) error {
	for _, target := range []error{common.ErrPostNotFound, common.ErrCommentNotFound, common.ErrForbidden} {
		if errors.Is(err, target) {
			return target
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}
