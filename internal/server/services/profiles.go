package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/devconnector/internal/common"
	"github.com/dmitrijs2005/devconnector/internal/dbx"
	"github.com/dmitrijs2005/devconnector/internal/server/models"
	"github.com/dmitrijs2005/devconnector/internal/server/repositories/repomanager"
)

type ProfileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewProfileService(db *sql.DB, m repomanager.RepositoryManager) *ProfileService {
	return &ProfileService{db: db, repomanager: m}
}

// Get returns the caller's own profile.
func (s *ProfileService) Get(ctx context.Context, userID string) (*models.Profile, error) {
	return s.find(ctx, func() (*models.Profile, error) {
		return s.repomanager.Profiles(s.db).FindByUser(ctx, userID)
	})
}

// GetByUser is the public lookup by owning user id.
func (s *ProfileService) GetByUser(ctx context.Context, userID string) (*models.Profile, error) {
	return s.Get(ctx, userID)
}

func (s *ProfileService) GetByHandle(ctx context.Context, handle string) (*models.Profile, error) {
	return s.find(ctx, func() (*models.Profile, error) {
		return s.repomanager.Profiles(s.db).FindByHandle(ctx, handle)
	})
}

func (s *ProfileService) find(ctx context.Context, fn func() (*models.Profile, error)) (*models.Profile, error) {
	p, err := fn()
	if err != nil {
		if errors.Is(err, common.ErrProfileNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error loading profile: %w", err)
	}
	return p, nil
}

// Submit creates the user's profile or merge-patches the existing one.
// Handle, status and skills are required on creation; an update only checks
// the fields it provides.
func (s *ProfileService) Submit(ctx context.Context, userID string, in ProfileInput) (*models.Profile, error) {
	var profile *models.Profile
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Profiles(tx)

		exists, err := repo.Exists(ctx, userID)
		if err != nil {
			return fmt.Errorf("error checking profile: %w", err)
		}
		if err := in.validate(!exists); err != nil {
			return err
		}

		profile, err = repo.UpsertForUser(ctx, userID, in.patch())
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrValidation), errors.Is(err, common.ErrHandleTaken):
			return nil, err
		case errors.Is(err, common.ErrorNotFound):
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error saving profile: %w", err)
	}
	return profile, nil
}

// AddExperience prepends an experience entry and returns the profile.
func (s *ProfileService) AddExperience(ctx context.Context, userID string, in ExperienceInput) (*models.Profile, error) {
	entry, err := in.toModel()
	if err != nil {
		return nil, err
	}
	return s.modify(ctx, userID, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Profiles(tx).AppendExperience(ctx, userID, entry)
	})
}

// AddEducation prepends an education entry and returns the profile.
func (s *ProfileService) AddEducation(ctx context.Context, userID string, in EducationInput) (*models.Profile, error) {
	entry, err := in.toModel()
	if err != nil {
		return nil, err
	}
	return s.modify(ctx, userID, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Profiles(tx).AppendEducation(ctx, userID, entry)
	})
}

// RemoveExperience deletes an experience entry if present. Removing an
// unknown entry is not an error; the profile is returned either way.
func (s *ProfileService) RemoveExperience(ctx context.Context, userID, entryID string) (*models.Profile, error) {
	return s.modify(ctx, userID, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := s.repomanager.Profiles(tx).RemoveExperience(ctx, userID, entryID)
		return err
	})
}

// RemoveEducation deletes an education entry if present.
func (s *ProfileService) RemoveEducation(ctx context.Context, userID, entryID string) (*models.Profile, error) {
	return s.modify(ctx, userID, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := s.repomanager.Profiles(tx).RemoveEducation(ctx, userID, entryID)
		return err
	})
}

// modify runs fn in a transaction against an existing profile and returns
// the profile as committed.
func (s *ProfileService) modify(ctx context.Context, userID string, fn func(ctx context.Context, tx dbx.DBTX) error) (*models.Profile, error) {
	var profile *models.Profile
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Profiles(tx)
		exists, err := repo.Exists(ctx, userID)
		if err != nil {
			return err
		}
		if !exists {
			return common.ErrProfileNotFound
		}
		if err := fn(ctx, tx); err != nil {
			return err
		}
		profile, err = repo.FindByUser(ctx, userID)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrProfileNotFound) {
			return nil, common.ErrProfileNotFound
		}
		return nil, fmt.Errorf("error updating profile: %w", err)
	}
	return profile, nil
}
