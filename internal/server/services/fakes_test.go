package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/devconnector/internal/common"
	"github.com/dmitrijs2005/devconnector/internal/dbx"
	"github.com/dmitrijs2005/devconnector/internal/server/auth"
	"github.com/dmitrijs2005/devconnector/internal/server/models"
	"github.com/dmitrijs2005/devconnector/internal/server/repositories/posts"
	"github.com/dmitrijs2005/devconnector/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/devconnector/internal/server/repositories/users"
	"github.com/google/uuid"
)

var errBoom = errors.New("boom")

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func strptr(s string) *string { return &s }

// --- hasher / tokens ---

type fakeHasher struct {
	mu          sync.Mutex
	hashCalls   int
	verifyCalls int
	hashErr     error
	lastDigest  string
}

func (h *fakeHasher) Hash(p string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hashCalls++
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return "hashed:" + p, nil
}

func (h *fakeHasher) Verify(p, digest string) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.verifyCalls++
	h.lastDigest = digest
	if !strings.HasPrefix(digest, "hashed:") {
		return false, common.ErrHashingFailure
	}
	return digest == "hashed:"+p, nil
}

type fakeTokens struct{ err error }

func (f fakeTokens) Issue(id auth.Identity) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "token-" + id.ID, nil
}

// --- users ---

type fakeUsersRepo struct {
	mu        sync.Mutex
	byID      map[string]*models.User
	createErr error
	getErr    error
	deleteErr error
}

func newFakeUsersRepo(seed ...*models.User) *fakeUsersRepo {
	r := &fakeUsersRepo{byID: map[string]*models.User{}}
	for _, u := range seed {
		r.byID[u.ID] = u
	}
	return r
}

func (r *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	for _, existing := range r.byID {
		if existing.Email == u.Email {
			return nil, common.ErrDuplicateEmail
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	cp := *u
	r.byID[u.ID] = &cp
	return u, nil
}

func (r *fakeUsersRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	for _, u := range r.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *fakeUsersRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	if u, ok := r.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, common.ErrorNotFound
}

func (r *fakeUsersRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.byID, id)
	return nil
}

// --- profiles ---

type fakeProfilesRepo struct {
	mu         sync.Mutex
	byUser     map[string]*models.Profile
	upsertErr  error
	deleteErr  error
	existsErr  error
	upsertRuns int
}

func newFakeProfilesRepo() *fakeProfilesRepo {
	return &fakeProfilesRepo{byUser: map[string]*models.Profile{}}
}

func cloneProfile(p *models.Profile) *models.Profile {
	cp := *p
	cp.Skills = append([]string{}, p.Skills...)
	cp.Experience = append([]models.Experience{}, p.Experience...)
	cp.Education = append([]models.Education{}, p.Education...)
	return &cp
}

func (r *fakeProfilesRepo) FindByUser(_ context.Context, userID string) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byUser[userID]
	if !ok {
		return nil, common.ErrProfileNotFound
	}
	return cloneProfile(p), nil
}

func (r *fakeProfilesRepo) FindByHandle(_ context.Context, handle string) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.byUser {
		if p.Handle == handle {
			return cloneProfile(p), nil
		}
	}
	return nil, common.ErrProfileNotFound
}

func (r *fakeProfilesRepo) Exists(_ context.Context, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.existsErr != nil {
		return false, r.existsErr
	}
	_, ok := r.byUser[userID]
	return ok, nil
}

func (r *fakeProfilesRepo) UpsertForUser(_ context.Context, userID string, patch *models.ProfilePatch) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upsertRuns++
	if r.upsertErr != nil {
		return nil, r.upsertErr
	}

	cur, ok := r.byUser[userID]
	next := &models.Profile{ID: uuid.NewString(), User: models.ProfileOwner{ID: userID}, Skills: []string{}}
	if ok {
		next = cloneProfile(cur)
	}
	patch.Apply(next)
	if next.Handle == "" {
		return nil, common.NewValidationError("handle", "Profile handle is required")
	}
	for uid, other := range r.byUser {
		if uid != userID && other.Handle == next.Handle {
			return nil, common.ErrHandleTaken
		}
	}
	r.byUser[userID] = next
	return cloneProfile(next), nil
}

func (r *fakeProfilesRepo) AppendExperience(_ context.Context, userID string, e *models.Experience) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byUser[userID]
	if !ok {
		return common.ErrProfileNotFound
	}
	e.ID = uuid.NewString()
	p.Experience = append([]models.Experience{*e}, p.Experience...)
	return nil
}

func (r *fakeProfilesRepo) AppendEducation(_ context.Context, userID string, e *models.Education) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byUser[userID]
	if !ok {
		return common.ErrProfileNotFound
	}
	e.ID = uuid.NewString()
	p.Education = append([]models.Education{*e}, p.Education...)
	return nil
}

func (r *fakeProfilesRepo) RemoveExperience(_ context.Context, userID, entryID string) (models.RemoveResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byUser[userID]
	if !ok {
		return models.NotFound, nil
	}
	for i, e := range p.Experience {
		if e.ID == entryID {
			p.Experience = append(p.Experience[:i], p.Experience[i+1:]...)
			return models.Removed, nil
		}
	}
	return models.NotFound, nil
}

func (r *fakeProfilesRepo) RemoveEducation(_ context.Context, userID, entryID string) (models.RemoveResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byUser[userID]
	if !ok {
		return models.NotFound, nil
	}
	for i, e := range p.Education {
		if e.ID == entryID {
			p.Education = append(p.Education[:i], p.Education[i+1:]...)
			return models.Removed, nil
		}
	}
	return models.NotFound, nil
}

func (r *fakeProfilesRepo) DeleteForUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.byUser, userID)
	return nil
}

// --- posts ---

type fakePostsRepo struct {
	mu    sync.Mutex
	posts map[string]*models.Post
	err   error
}

func newFakePostsRepo() *fakePostsRepo {
	return &fakePostsRepo{posts: map[string]*models.Post{}}
}

func clonePost(p *models.Post) *models.Post {
	cp := *p
	cp.Likes = append([]models.Like{}, p.Likes...)
	cp.Comments = append([]models.Comment{}, p.Comments...)
	return &cp
}

func (r *fakePostsRepo) Create(_ context.Context, p *models.Post) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now()
	p.Likes = []models.Like{}
	p.Comments = []models.Comment{}
	r.posts[p.ID] = clonePost(p)
	return p, nil
}

func (r *fakePostsRepo) Get(_ context.Context, id string) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	p, ok := r.posts[id]
	if !ok {
		return nil, common.ErrPostNotFound
	}
	return clonePost(p), nil
}

func (r *fakePostsRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return common.ErrPostNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *fakePostsRepo) AddLike(_ context.Context, postID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	if !ok {
		return false, common.ErrPostNotFound
	}
	for _, l := range p.Likes {
		if l.UserID == userID {
			return false, nil
		}
	}
	p.Likes = append([]models.Like{{UserID: userID}}, p.Likes...)
	return true, nil
}

func (r *fakePostsRepo) RemoveLike(_ context.Context, postID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	if !ok {
		return false, common.ErrPostNotFound
	}
	for i, l := range p.Likes {
		if l.UserID == userID {
			p.Likes = append(p.Likes[:i], p.Likes[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *fakePostsRepo) AddComment(_ context.Context, postID string, c *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	if !ok {
		return common.ErrPostNotFound
	}
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now()
	p.Comments = append([]models.Comment{*c}, p.Comments...)
	return nil
}

func (r *fakePostsRepo) GetComment(_ context.Context, postID, commentID string) (*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	if !ok {
		return nil, common.ErrPostNotFound
	}
	for _, c := range p.Comments {
		if c.ID == commentID {
			cp := c
			return &cp, nil
		}
	}
	return nil, common.ErrCommentNotFound
}

func (r *fakePostsRepo) DeleteComment(_ context.Context, postID, commentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.posts[postID]
	for i, c := range p.Comments {
		if c.ID == commentID {
			p.Comments = append(p.Comments[:i], p.Comments[i+1:]...)
			return nil
		}
	}
	return common.ErrCommentNotFound
}

// --- manager ---

type fakeRepoManager struct {
	u  *fakeUsersRepo
	pr *fakeProfilesRepo
	po *fakePostsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return m.u }
func (m *fakeRepoManager) Profiles(dbx.DBTX) profiles.Repository        { return m.pr }
func (m *fakeRepoManager) Posts(dbx.DBTX) posts.Repository              { return m.po }
