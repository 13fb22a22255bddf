package services

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/devconnector/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProfileService(t *testing.T) (*ProfileService, *fakeProfilesRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newSQLMockDB(t)
	repo := newFakeProfilesRepo()
	return NewProfileService(db, &fakeRepoManager{pr: repo}), repo, mock
}

func createInput(handle string) ProfileInput {
	return ProfileInput{Handle: strptr(handle), Status: strptr("Developer"), Skills: strptr("go, sql,, docker ")}
}

func TestSubmit_CreatesProfile(t *testing.T) {
	svc, repo, mock := newProfileService(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	p, err := svc.Submit(context.Background(), "u1", createInput("alice"))
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, "alice", p.Handle)
	assert.Equal(t, []string{"go", "sql", "docker"}, p.Skills)
	assert.Len(t, repo.byUser, 1)
}

func TestSubmit_CreationRequiresFields(t *testing.T) {
	svc, repo, mock := newProfileService(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Submit(context.Background(), "u1", ProfileInput{Company: strptr("Acme")})
	require.ErrorIs(t, err, common.ErrValidation)
	require.NoError(t, mock.ExpectationsWereMet())

	var verr *common.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "handle")
	assert.Contains(t, verr.Fields, "status")
	assert.Contains(t, verr.Fields, "skills")
	assert.Equal(t, 0, repo.upsertRuns)
}

func TestSubmit_UpdateIsMergePatch(t *testing.T) {
	svc, repo, mock := newProfileService(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectCommit()

	in := createInput("alice")
	in.Company = strptr("Acme")
	in.Twitter = strptr("https://twitter.com/alice")
	_, err := svc.Submit(context.Background(), "u1", in)
	require.NoError(t, err)

	// status and skills omitted: allowed on update and left untouched
	p, err := svc.Submit(context.Background(), "u1", ProfileInput{Company: strptr(""), Bio: strptr("hi")})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, "alice", p.Handle)
	assert.Equal(t, "Developer", p.Status)
	assert.Equal(t, "", p.Company)
	assert.Equal(t, "hi", p.Bio)
	assert.Equal(t, "https://twitter.com/alice", p.Social.Twitter)
	assert.Len(t, repo.byUser, 1, "one profile per user")
}

func TestSubmit_HandleTaken(t *testing.T) {
	svc, _, mock := newProfileService(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Submit(context.Background(), "u1", createInput("alice"))
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), "u2", createInput("alice"))
	require.ErrorIs(t, err, common.ErrHandleTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmit_HandleChangeRevalidated(t *testing.T) {
	svc, repo, mock := newProfileService(t)
	for range 3 {
		mock.ExpectBegin()
		mock.ExpectCommit()
	}
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Submit(context.Background(), "u1", createInput("alice"))
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), "u2", createInput("bob"))
	require.NoError(t, err)

	p, err := svc.Submit(context.Background(), "u1", ProfileInput{Handle: strptr("alice2")})
	require.NoError(t, err)
	assert.Equal(t, "alice2", p.Handle)

	_, err = svc.Submit(context.Background(), "u1", ProfileInput{Handle: strptr("bob")})
	require.ErrorIs(t, err, common.ErrHandleTaken)
	assert.Equal(t, "alice2", repo.byUser["u1"].Handle)
}

func TestSubmit_ValidationOnUpdate(t *testing.T) {
	svc, _, mock := newProfileService(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Submit(context.Background(), "u1", createInput("alice"))
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), "u1", ProfileInput{Handle: strptr("a"), Website: strptr("not a url")})
	var verr *common.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Handle needs to be between 2 and 40 characters", verr.Fields["handle"])
	assert.Equal(t, "Not a valid URL", verr.Fields["website"])
}

func TestSubmit_StorageErrorIsWrapped(t *testing.T) {
	svc, repo, mock := newProfileService(t)
	repo.upsertErr = errBoom
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Submit(context.Background(), "u1", createInput("alice"))
	require.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), "error saving profile")
}

func TestSubmit_UnknownOwner(t *testing.T) {
	svc, repo, mock := newProfileService(t)
	repo.upsertErr = common.ErrorNotFound
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Submit(context.Background(), "u1", createInput("alice"))
	require.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestGetProfile(t *testing.T) {
	svc, _, mock := newProfileService(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	_, err := svc.Get(context.Background(), "u1")
	require.ErrorIs(t, err, common.ErrProfileNotFound)

	_, err = svc.Submit(context.Background(), "u1", createInput("alice"))
	require.NoError(t, err)

	p, err := svc.GetByHandle(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "u1", p.User.ID)

	p, err = svc.GetByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Handle)

	_, err = svc.GetByHandle(context.Background(), "nobody")
	require.ErrorIs(t, err, common.ErrProfileNotFound)
}

func TestExperienceLifecycle(t *testing.T) {
	svc, _, mock := newProfileService(t)
	for range 5 {
		mock.ExpectBegin()
		mock.ExpectCommit()
	}

	_, err := svc.Submit(context.Background(), "u1", createInput("alice"))
	require.NoError(t, err)

	_, err = svc.AddExperience(context.Background(), "u1", ExperienceInput{
		Title: "Dev", Company: "Initech", Location: "Riga", From: "2018-01-01", To: "2020-01-01"})
	require.NoError(t, err)

	p, err := svc.AddExperience(context.Background(), "u1", ExperienceInput{
		Title: "Lead", Company: "Acme", Location: "Riga", From: "2020-02-01", To: "2021-01-01", Current: true})
	require.NoError(t, err)

	require.Len(t, p.Experience, 2)
	assert.Equal(t, "Lead", p.Experience[0].Title, "newest first")
	assert.Nil(t, p.Experience[0].To, "current entry has no end date")
	require.NotNil(t, p.Experience[1].To)

	id := p.Experience[0].ID
	p, err = svc.RemoveExperience(context.Background(), "u1", id)
	require.NoError(t, err)
	require.Len(t, p.Experience, 1)

	// second removal of the same id is a no-op
	p, err = svc.RemoveExperience(context.Background(), "u1", id)
	require.NoError(t, err)
	assert.Len(t, p.Experience, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEducationLifecycle(t *testing.T) {
	svc, _, mock := newProfileService(t)
	for range 4 {
		mock.ExpectBegin()
		mock.ExpectCommit()
	}

	_, err := svc.Submit(context.Background(), "u1", createInput("alice"))
	require.NoError(t, err)

	p, err := svc.AddEducation(context.Background(), "u1", EducationInput{
		School: "LU", Degree: "BSc", FieldOfStudy: "CS", From: "2014-09-01", To: "2018-06-01"})
	require.NoError(t, err)
	require.Len(t, p.Education, 1)

	p, err = svc.RemoveEducation(context.Background(), "u1", "not-an-id")
	require.NoError(t, err)
	assert.Len(t, p.Education, 1)

	p, err = svc.RemoveEducation(context.Background(), "u1", p.Education[0].ID)
	require.NoError(t, err)
	assert.Empty(t, p.Education)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEntries_NoProfile(t *testing.T) {
	svc, _, mock := newProfileService(t)
	for range 2 {
		mock.ExpectBegin()
		mock.ExpectRollback()
	}

	_, err := svc.AddEducation(context.Background(), "u1", EducationInput{
		School: "LU", Degree: "BSc", FieldOfStudy: "CS", From: "2014-09-01"})
	require.ErrorIs(t, err, common.ErrProfileNotFound)

	_, err = svc.RemoveExperience(context.Background(), "u1", "x")
	require.ErrorIs(t, err, common.ErrProfileNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddExperience_Validation(t *testing.T) {
	svc, _, _ := newProfileService(t)

	_, err := svc.AddExperience(context.Background(), "u1", ExperienceInput{
		Title: "Dev", Company: "Acme", Location: "Riga", From: "2020-01-01", To: "2019-01-01"})
	var verr *common.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, map[string]string{"to": "To date must not be before from date"}, verr.Fields)

	_, err = svc.AddExperience(context.Background(), "u1", ExperienceInput{From: "yesterday"})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "From date is not valid", verr.Fields["from"])
	assert.Contains(t, verr.Fields, "title")
	assert.Contains(t, verr.Fields, "company")
	assert.Contains(t, verr.Fields, "location")
}
