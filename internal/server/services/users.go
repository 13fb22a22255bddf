// Package services implements the account, profile and post operations on
// top of the repositories. Multi-step writes run inside dbx.WithTx.
package services

import (
	"context"
	"crypto/md5"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/devconnector/internal/common"
	"github.com/dmitrijs2005/devconnector/internal/dbx"
	"github.com/dmitrijs2005/devconnector/internal/server/auth"
	"github.com/dmitrijs2005/devconnector/internal/server/models"
	"github.com/dmitrijs2005/devconnector/internal/server/repositories/repomanager"
)

// TokenIssuer is the part of auth.TokenService the user service depends on.
type TokenIssuer interface {
	Issue(id auth.Identity) (string, error)
}

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      auth.PasswordHasher
	tokens      TokenIssuer

	dummyOnce sync.Once
	dummyHash string
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, hasher auth.PasswordHasher, tokens TokenIssuer) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		tokens:      tokens,
	}
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// GravatarURL derives the avatar URL for a normalized email.
func GravatarURL(email string) string {
	sum := md5.Sum([]byte(email))
	return "//www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?s=200&r=pg&d=mm"
}

// Register creates an account. The password is hashed exactly once and the
// plaintext is never stored. A taken email yields common.ErrDuplicateEmail,
// including when a concurrent registration wins the race.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	email := NormalizeEmail(in.Email)
	repo := s.repomanager.Users(s.db)

	_, err := repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, common.ErrDuplicateEmail
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: digest,
		Avatar:       GravatarURL(email),
	}

	user, err = repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// fallbackDummyDigest is a cost 10 bcrypt digest of an unused password.
const fallbackDummyDigest = "$2b$10$MweHN5qNY6t4l9r71iX3bOKSUP/uD2N7y4CdfJJIz2miFOrND4kb."

// dummyDigest is compared against when the email is unknown, so that a
// login attempt costs the same whether or not the account exists. If the
// hasher cannot build one, the fixed digest is used instead.
func (s *UserService) dummyDigest() string {
	s.dummyOnce.Do(func() {
		digest, err := s.hasher.Hash("devconnector-unknown-user")
		if err != nil || digest == "" {
			digest = fallbackDummyDigest
		}
		s.dummyHash = digest
	})
	return s.dummyHash
}

// Login verifies the credentials and returns a signed token. Unknown email
// and wrong password are both common.ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, in LoginInput) (string, error) {
	if err := in.validate(); err != nil {
		return "", err
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, NormalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_, _ = s.hasher.Verify(in.Password, s.dummyDigest())
			return "", common.ErrInvalidCredentials
		}
		return "", fmt.Errorf("error searching user: %w", err)
	}

	ok, err := s.hasher.Verify(in.Password, user.PasswordHash)
	if err != nil {
		return "", fmt.Errorf("error verifying password: %w", err)
	}
	if !ok {
		return "", common.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(auth.Identity{ID: user.ID, Name: user.Name, Avatar: user.Avatar})
	if err != nil {
		return "", fmt.Errorf("error issuing token: %w", err)
	}
	return token, nil
}

// Current returns the authenticated user. A token whose subject no longer
// exists is common.ErrorUnauthorized.
func (s *UserService) Current(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}
	return user, nil
}

// DeleteAccount removes the user's profile and then the user in one
// transaction. A user without a profile is fine; any failure rolls back
// both steps.
func (s *UserService) DeleteAccount(ctx context.Context, userID string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Profiles(tx).DeleteForUser(ctx, userID); err != nil {
			return fmt.Errorf("error deleting profile: %w", err)
		}
		if err := s.repomanager.Users(tx).Delete(ctx, userID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorUnauthorized
			}
			return fmt.Errorf("error deleting user: %w", err)
		}
		return nil
	})
}
