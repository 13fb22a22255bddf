package profiles

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/devconnector/internal/common"
	"github.com/dmitrijs2005/devconnector/internal/dbx"
	"github.com/dmitrijs2005/devconnector/internal/server/models"
	"github.com/google/uuid"
)

// Constraint names from the profiles migration.
const (
	HandleConstraint = "profiles_handle_key"
	UserConstraint   = "profiles_user_id_key"
)

const selectProfile = `SELECT p.id, p.user_id, u.name, u.avatar, p.handle, p.company, p.website, p.location,
		 p.status, p.bio, p.githubusername, p.skills, p.social, p.created_at
		 FROM profiles p JOIN users u ON u.id = p.user_id
		 `

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FindByUser(ctx context.Context, userID string) (*models.Profile, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, common.ErrProfileNotFound
	}
	return r.find(ctx, selectProfile+`WHERE p.user_id = $1`, userID)
}

func (r *PostgresRepository) FindByHandle(ctx context.Context, handle string) (*models.Profile, error) {
	return r.find(ctx, selectProfile+`WHERE p.handle = $1`, handle)
}

func (r *PostgresRepository) find(ctx context.Context, query string, arg any) (*models.Profile, error) {
	p := &models.Profile{}
	var skills, social []byte

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&p.ID, &p.User.ID, &p.User.Name, &p.User.Avatar, &p.Handle, &p.Company, &p.Website, &p.Location,
		&p.Status, &p.Bio, &p.GitHubUsername, &skills, &social, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrProfileNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if err := decodeDocument(p, skills, social); err != nil {
		return nil, err
	}

	if p.Experience, err = r.listExperience(ctx, p.User.ID); err != nil {
		return nil, err
	}
	if p.Education, err = r.listEducation(ctx, p.User.ID); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostgresRepository) Exists(ctx context.Context, userID string) (bool, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return false, nil
	}

	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM profiles WHERE user_id = $1)`, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

// UpsertForUser locks the user's profile row, merges patch into it and
// writes it back. When no profile exists it inserts one; losing a
// concurrent insert for the same user falls back to the update path, so the
// caller never sees a duplicate. Handles owned by another profile yield
// common.ErrHandleTaken.
func (r *PostgresRepository) UpsertForUser(ctx context.Context, userID string, patch *models.ProfilePatch) (*models.Profile, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, common.ErrorNotFound
	}

	if err := r.serialize(ctx, userID); err != nil {
		return nil, err
	}

	cur, err := r.lockForUser(ctx, userID)
	switch {
	case errors.Is(err, common.ErrProfileNotFound):
		inserted, err := r.insert(ctx, userID, patch)
		if err != nil {
			return nil, err
		}
		if !inserted {
			if cur, err = r.lockForUser(ctx, userID); err != nil {
				return nil, err
			}
			if err := r.update(ctx, userID, cur, patch); err != nil {
				return nil, err
			}
		}
	case err != nil:
		return nil, err
	default:
		if err := r.update(ctx, userID, cur, patch); err != nil {
			return nil, err
		}
	}

	return r.FindByUser(ctx, userID)
}

// serialize takes a transaction-scoped advisory lock on the user so that
// concurrent first submissions queue up and the later one sees the row.
// Outside a transaction the lock is released immediately.
func (r *PostgresRepository) serialize(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) lockForUser(ctx context.Context, userID string) (*models.Profile, error) {
	query :=
		`SELECT handle, company, website, location, status, bio, githubusername, skills, social
		 FROM profiles WHERE user_id = $1
		 FOR UPDATE`

	p := &models.Profile{}
	var skills, social []byte
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&p.Handle, &p.Company, &p.Website, &p.Location, &p.Status, &p.Bio, &p.GitHubUsername, &skills, &social)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrProfileNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if err := decodeDocument(p, skills, social); err != nil {
		return nil, err
	}
	return p, nil
}

// insert reports false when another transaction created the user's profile
// first.
func (r *PostgresRepository) insert(ctx context.Context, userID string, patch *models.ProfilePatch) (bool, error) {
	p := &models.Profile{}
	patch.Apply(p)
	if p.Handle == "" {
		return false, common.NewValidationError("handle", "Profile handle is required")
	}

	if err := r.checkHandle(ctx, userID, p.Handle); err != nil {
		return false, err
	}

	skills, social, err := encodeDocument(p)
	if err != nil {
		return false, err
	}

	query :=
		`INSERT INTO profiles (user_id, handle, company, website, location, status, bio, githubusername, skills, social)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (user_id) DO NOTHING
		 RETURNING id`

	var id string
	err = r.db.QueryRowContext(ctx, query, userID, p.Handle, p.Company, p.Website, p.Location,
		p.Status, p.Bio, p.GitHubUsername, skills, social).Scan(&id)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case dbx.IsUniqueViolation(err, HandleConstraint):
		return false, common.ErrHandleTaken
	case dbx.IsForeignKeyViolation(err, ""):
		return false, common.ErrorNotFound
	default:
		return false, fmt.Errorf("db error: %w", err)
	}
}

func (r *PostgresRepository) update(ctx context.Context, userID string, cur *models.Profile, patch *models.ProfilePatch) error {
	oldHandle := cur.Handle
	patch.Apply(cur)

	if cur.Handle != oldHandle {
		if err := r.checkHandle(ctx, userID, cur.Handle); err != nil {
			return err
		}
	}

	skills, social, err := encodeDocument(cur)
	if err != nil {
		return err
	}

	query :=
		`UPDATE profiles SET handle = $2, company = $3, website = $4, location = $5, status = $6,
		 bio = $7, githubusername = $8, skills = $9, social = $10
		 WHERE user_id = $1`

	_, err = r.db.ExecContext(ctx, query, userID, cur.Handle, cur.Company, cur.Website, cur.Location,
		cur.Status, cur.Bio, cur.GitHubUsername, skills, social)
	if err != nil {
		if dbx.IsUniqueViolation(err, HandleConstraint) {
			return common.ErrHandleTaken
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// checkHandle gives a friendly early error; the unique constraint remains
// authoritative.
func (r *PostgresRepository) checkHandle(ctx context.Context, userID, handle string) error {
	var taken bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM profiles WHERE handle = $1 AND user_id <> $2)`, handle, userID).Scan(&taken)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if taken {
		return common.ErrHandleTaken
	}
	return nil
}

// DeleteForUser removes the user's profile; experience and education rows
// cascade. A missing profile is not an error.
func (r *PostgresRepository) DeleteForUser(ctx context.Context, userID string) error {
	if _, err := uuid.Parse(userID); err != nil {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func encodeDocument(p *models.Profile) (skills, social []byte, err error) {
	list := p.Skills
	if list == nil {
		list = []string{}
	}
	if skills, err = json.Marshal(list); err != nil {
		return nil, nil, fmt.Errorf("encode skills: %w", err)
	}
	if social, err = json.Marshal(p.Social); err != nil {
		return nil, nil, fmt.Errorf("encode social: %w", err)
	}
	return skills, social, nil
}

func decodeDocument(p *models.Profile, skills, social []byte) error {
	p.Skills = []string{}
	if len(skills) > 0 {
		if err := json.Unmarshal(skills, &p.Skills); err != nil {
			return fmt.Errorf("decode skills: %w", err)
		}
		if p.Skills == nil {
			p.Skills = []string{}
		}
	}
	if len(social) > 0 {
		if err := json.Unmarshal(social, &p.Social); err != nil {
			return fmt.Errorf("decode social: %w", err)
		}
	}
	return nil
}
