package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/devconnector/internal/common"
	"github.com/dmitrijs2005/devconnector/internal/dbx"
	"github.com/dmitrijs2005/devconnector/internal/server/models"
	"github.com/google/uuid"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Create assigns the post an ID and stores it.
func (r *PostgresRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	post.ID = uuid.NewString()

	query :=
		`INSERT INTO posts (id, user_id, text, name, avatar)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query, post.ID, post.UserID, post.Text, post.Name, post.Avatar).
		Scan(&post.CreatedAt)
	if err != nil {
		if dbx.IsForeignKeyViolation(err, "") {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	post.Likes = []models.Like{}
	post.Comments = []models.Comment{}
	return post, nil
}

// Get loads the post with its likes and comments, newest first.
func (r *PostgresRepository) Get(ctx context.Context, postID string) (*models.Post, error) {
	if !validID(postID) {
		return nil, common.ErrPostNotFound
	}

	query :=
		`SELECT id, user_id, text, name, avatar, created_at FROM posts
		 WHERE id = $1`

	p := &models.Post{}
	err := r.db.QueryRowContext(ctx, query, postID).
		Scan(&p.ID, &p.UserID, &p.Text, &p.Name, &p.Avatar, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrPostNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if p.Likes, err = r.listLikes(ctx, postID); err != nil {
		return nil, err
	}
	if p.Comments, err = r.listComments(ctx, postID); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostgresRepository) listLikes(ctx context.Context, postID string) ([]models.Like, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id FROM post_likes WHERE post_id = $1 ORDER BY created_at DESC`, postID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []models.Like{}
	for rows.Next() {
		var l models.Like
		if err := rows.Scan(&l.UserID); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) listComments(ctx context.Context, postID string) ([]models.Comment, error) {
	query :=
		`SELECT id, user_id, text, name, avatar, created_at FROM post_comments
		 WHERE post_id = $1
		 ORDER BY seq DESC`

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []models.Comment{}
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.UserID, &c.Text, &c.Name, &c.Avatar, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

// Delete removes the post; likes and comments cascade.
func (r *PostgresRepository) Delete(ctx context.Context, postID string) error {
	if !validID(postID) {
		return common.ErrPostNotFound
	}
	return execOne(ctx, r.db, common.ErrPostNotFound, `DELETE FROM posts WHERE id = $1`, postID)
}

func (r *PostgresRepository) AddLike(ctx context.Context, postID, userID string) (bool, error) {
	if !validID(postID) {
		return false, common.ErrPostNotFound
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, postID, userID)
	if err != nil {
		if dbx.IsForeignKeyViolation(err, "") {
			return false, common.ErrPostNotFound
		}
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected(res)
}

func (r *PostgresRepository) RemoveLike(ctx context.Context, postID, userID string) (bool, error) {
	if !validID(postID) {
		return false, common.ErrPostNotFound
	}

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected(res)
}

// AddComment assigns the comment an ID and stores it as the newest comment
// of the post.
func (r *PostgresRepository) AddComment(ctx context.Context, postID string, c *models.Comment) error {
	if !validID(postID) {
		return common.ErrPostNotFound
	}

	c.ID = uuid.NewString()
	query :=
		`INSERT INTO post_comments (id, post_id, user_id, text, name, avatar)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query, c.ID, postID, c.UserID, c.Text, c.Name, c.Avatar).Scan(&c.CreatedAt)
	if err != nil {
		if dbx.IsForeignKeyViolation(err, "") {
			return common.ErrPostNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetComment(ctx context.Context, postID, commentID string) (*models.Comment, error) {
	if !validID(postID) || !validID(commentID) {
		return nil, common.ErrCommentNotFound
	}

	query :=
		`SELECT id, user_id, text, name, avatar, created_at FROM post_comments
		 WHERE post_id = $1 AND id = $2`

	c := &models.Comment{}
	err := r.db.QueryRowContext(ctx, query, postID, commentID).
		Scan(&c.ID, &c.UserID, &c.Text, &c.Name, &c.Avatar, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrCommentNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) DeleteComment(ctx context.Context, postID, commentID string) error {
	if !validID(postID) || !validID(commentID) {
		return common.ErrCommentNotFound
	}
	return execOne(ctx, r.db, common.ErrCommentNotFound,
		`DELETE FROM post_comments WHERE post_id = $1 AND id = $2`, postID, commentID)
}

func execOne(ctx context.Context, db dbx.DBTX, notFound error, query string, args ...any) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	ok, err := affected(res)
	if err != nil {
		return err
	}
	if !ok {
		return notFound
	}
	return nil
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}
