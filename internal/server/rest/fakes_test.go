package rest

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/devconnector/internal/common"
	"github.com/dmitrijs2005/devconnector/internal/server/auth"
	"github.com/dmitrijs2005/devconnector/internal/server/models"
	"github.com/dmitrijs2005/devconnector/internal/server/services"
)

// ---- fakes ----

type fakeUsers struct {
	regResp   *models.User
	regErr    error
	gotReg    services.RegisterInput
	token     string
	loginErr  error
	current   *models.User
	curErr    error
	deleteErr error
	deleted   string
}

func (f *fakeUsers) Register(ctx context.Context, in services.RegisterInput) (*models.User, error) {
	f.gotReg = in
	return f.regResp, f.regErr
}
func (f *fakeUsers) Login(ctx context.Context, in services.LoginInput) (string, error) {
	return f.token, f.loginErr
}
func (f *fakeUsers) Current(ctx context.Context, userID string) (*models.User, error) {
	return f.current, f.curErr
}
func (f *fakeUsers) DeleteAccount(ctx context.Context, userID string) error {
	f.deleted = userID
	return f.deleteErr
}

type fakeProfiles struct {
	resp     *models.Profile
	err      error
	gotUser  string
	gotArg   string
	gotInput services.ProfileInput
	gotExp   services.ExperienceInput
}

func (f *fakeProfiles) Get(ctx context.Context, userID string) (*models.Profile, error) {
	f.gotUser = userID
	return f.resp, f.err
}
func (f *fakeProfiles) GetByUser(ctx context.Context, userID string) (*models.Profile, error) {
	f.gotArg = userID
	return f.resp, f.err
}
func (f *fakeProfiles) GetByHandle(ctx context.Context, handle string) (*models.Profile, error) {
	f.gotArg = handle
	return f.resp, f.err
}
func (f *fakeProfiles) Submit(ctx context.Context, userID string, in services.ProfileInput) (*models.Profile, error) {
	f.gotUser, f.gotInput = userID, in
	return f.resp, f.err
}
func (f *fakeProfiles) AddExperience(ctx context.Context, userID string, in services.ExperienceInput) (*models.Profile, error) {
	f.gotUser, f.gotExp = userID, in
	return f.resp, f.err
}
func (f *fakeProfiles) AddEducation(ctx context.Context, userID string, in services.EducationInput) (*models.Profile, error) {
	f.gotUser = userID
	return f.resp, f.err
}
func (f *fakeProfiles) RemoveExperience(ctx context.Context, userID, entryID string) (*models.Profile, error) {
	f.gotUser, f.gotArg = userID, entryID
	return f.resp, f.err
}
func (f *fakeProfiles) RemoveEducation(ctx context.Context, userID, entryID string) (*models.Profile, error) {
	f.gotUser, f.gotArg = userID, entryID
	return f.resp, f.err
}

type fakePosts struct {
	resp      *models.Post
	err       error
	gotAuthor auth.Identity
	gotUser   string
	gotPost   string
	gotArg    string
}

func (f *fakePosts) Create(ctx context.Context, author auth.Identity, in services.PostInput) (*models.Post, error) {
	f.gotAuthor = author
	return f.resp, f.err
}
func (f *fakePosts) Get(ctx context.Context, postID string) (*models.Post, error) {
	f.gotPost = postID
	return f.resp, f.err
}
func (f *fakePosts) Delete(ctx context.Context, userID, postID string) error {
	f.gotUser, f.gotPost = userID, postID
	return f.err
}
func (f *fakePosts) ToggleLike(ctx context.Context, userID, postID string) (*models.Post, error) {
	f.gotUser, f.gotPost = userID, postID
	return f.resp, f.err
}
func (f *fakePosts) AddComment(ctx context.Context, author auth.Identity, postID string, in services.PostInput) (*models.Post, error) {
	f.gotAuthor, f.gotPost = author, postID
	return f.resp, f.err
}
func (f *fakePosts) DeleteComment(ctx context.Context, userID, postID, commentID string) (*models.Post, error) {
	f.gotUser, f.gotPost, f.gotArg = userID, postID, commentID
	return f.resp, f.err
}

// fakeGuard accepts "Bearer ok-<id>", reports "Bearer expired" as expired
// and rejects everything else.
type fakeGuard struct{}

func (fakeGuard) Authenticate(header string) (*auth.Identity, error) {
	token, ok := strings.CutPrefix(header, common.BearerPrefix)
	switch {
	case !ok || token == "":
		return nil, fmt.Errorf("%w: missing bearer token", common.ErrorUnauthorized)
	case token == "expired":
		return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, common.ErrTokenExpired)
	}
	id, ok := strings.CutPrefix(token, "ok-")
	if !ok {
		return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, common.ErrInvalidToken)
	}
	return &auth.Identity{ID: id, Name: "Name " + id, Avatar: "//avatar/" + id}, nil
}
