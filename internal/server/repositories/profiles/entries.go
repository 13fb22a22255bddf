package profiles

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/devconnector/internal/common"
	"github.com/dmitrijs2005/devconnector/internal/dbx"
	"github.com/dmitrijs2005/devconnector/internal/server/models"
	"github.com/google/uuid"
)

// AppendExperience stores e as the newest experience entry and assigns its ID.
// A user without a profile yields common.ErrProfileNotFound.
func (r *PostgresRepository) AppendExperience(ctx context.Context, userID string, e *models.Experience) error {
	if _, err := uuid.Parse(userID); err != nil {
		return common.ErrProfileNotFound
	}

	e.ID = uuid.NewString()
	query :=
		`INSERT INTO profile_experience (id, user_id, title, company, location, from_date, to_date, is_current, description)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query, e.ID, userID, e.Title, e.Company, e.Location,
		e.From, nullTime(e.To), e.Current, e.Description)
	return appendError(err)
}

// AppendEducation stores e as the newest education entry and assigns its ID.
func (r *PostgresRepository) AppendEducation(ctx context.Context, userID string, e *models.Education) error {
	if _, err := uuid.Parse(userID); err != nil {
		return common.ErrProfileNotFound
	}

	e.ID = uuid.NewString()
	query :=
		`INSERT INTO profile_education (id, user_id, school, degree, fieldofstudy, from_date, to_date, is_current, description)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query, e.ID, userID, e.School, e.Degree, e.FieldOfStudy,
		e.From, nullTime(e.To), e.Current, e.Description)
	return appendError(err)
}

func appendError(err error) error {
	switch {
	case err == nil:
		return nil
	case dbx.IsForeignKeyViolation(err, ""):
		return common.ErrProfileNotFound
	default:
		return fmt.Errorf("db error: %w", err)
	}
}

// RemoveExperience deletes the user's experience entry. Unknown or malformed
// ids report models.NotFound rather than an error.
func (r *PostgresRepository) RemoveExperience(ctx context.Context, userID, entryID string) (models.RemoveResult, error) {
	return r.remove(ctx, `DELETE FROM profile_experience WHERE id = $1 AND user_id = $2`, userID, entryID)
}

// RemoveEducation deletes the user's education entry. Unknown or malformed
// ids report models.NotFound rather than an error.
func (r *PostgresRepository) RemoveEducation(ctx context.Context, userID, entryID string) (models.RemoveResult, error) {
	return r.remove(ctx, `DELETE FROM profile_education WHERE id = $1 AND user_id = $2`, userID, entryID)
}

func (r *PostgresRepository) remove(ctx context.Context, query, userID, entryID string) (models.RemoveResult, error) {
	if _, err := uuid.Parse(entryID); err != nil {
		return models.NotFound, nil
	}
	if _, err := uuid.Parse(userID); err != nil {
		return models.NotFound, nil
	}

	res, err := r.db.ExecContext(ctx, query, entryID, userID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return models.NotFound, nil
	}
	return models.Removed, nil
}

func (r *PostgresRepository) listExperience(ctx context.Context, userID string) ([]models.Experience, error) {
	query :=
		`SELECT id, title, company, location, from_date, to_date, is_current, description
		 FROM profile_experience WHERE user_id = $1
		 ORDER BY seq DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []models.Experience{}
	for rows.Next() {
		var e models.Experience
		var to sql.NullTime
		if err := rows.Scan(&e.ID, &e.Title, &e.Company, &e.Location, &e.From, &to, &e.Current, &e.Description); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		e.To = timePtr(to)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) listEducation(ctx context.Context, userID string) ([]models.Education, error) {
	query :=
		`SELECT id, school, degree, fieldofstudy, from_date, to_date, is_current, description
		 FROM profile_education WHERE user_id = $1
		 ORDER BY seq DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []models.Education{}
	for rows.Next() {
		var e models.Education
		var to sql.NullTime
		if err := rows.Scan(&e.ID, &e.School, &e.Degree, &e.FieldOfStudy, &e.From, &to, &e.Current, &e.Description); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		e.To = timePtr(to)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
