package users

import (
	"context"
	"testing"
	"time"

	"meetingbot/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	records  []Record
	webUsers []WebUser
	nextID   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{nextID: 1}
}

func (f *fakeRepo) ListRecords(_ context.Context) ([]Record, error) {
	return f.records, nil
}

func (f *fakeRepo) GetRecordByUserID(_ context.Context, userID int64) (*Record, error) {
	for _, r := range f.records {
		if r.UserID == userID {
			record := r
			return &record, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) CreateRecord(_ context.Context, username string, userID int64, role string) (*Record, error) {
	record := Record{ID: f.nextID, Username: username, UserID: userID, UserRole: role}
	f.nextID++
	f.records = append(f.records, record)
	return &record, nil
}

func (f *fakeRepo) DeleteAllRecords(_ context.Context) (int, error) {
	count := len(f.records)
	f.records = nil
	return count, nil
}

func (f *fakeRepo) CreateWebUser(_ context.Context, login, passwordHash string, email, phone *string) (*WebUser, error) {
	now := time.Now()
	user := WebUser{
		ID:           int64(f.nextID),
		Login:        login,
		Email:        email,
		Phone:        phone,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.nextID++
	f.webUsers = append(f.webUsers, user)
	return &user, nil
}

func (f *fakeRepo) GetWebUserByLogin(_ context.Context, login string) (*WebUser, error) {
	for _, u := range f.webUsers {
		if u.Login == login {
			user := u
			return &user, nil
		}
	}
	return nil, nil
}

func TestCreateUserEnforcesUniqueUserID(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	record, err := svc.CreateUser(ctx, "alice", 1001, "admin")
	require.NoError(t, err)
	assert.Equal(t, "alice", record.Username)

	_, err = svc.CreateUser(ctx, "alice-again", 1001, "member")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	// A different external id is fine.
	_, err = svc.CreateUser(ctx, "bob", 1002, "member")
	assert.NoError(t, err)
}

func TestDeleteAllUsers(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "alice", 1001, "admin")
	require.NoError(t, err)
	_, err = svc.CreateUser(ctx, "bob", 1002, "member")
	require.NoError(t, err)

	count, err := svc.DeleteAllUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	records, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRegisterAndAuthenticateWebUser(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	user, err := svc.RegisterWebUser(ctx, "alice", "s3cret", nil, nil)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", user.PasswordHash)
	assert.True(t, auth.CheckPasswordHash("s3cret", user.PasswordHash))

	_, err = svc.RegisterWebUser(ctx, "alice", "other", nil, nil)
	assert.ErrorIs(t, err, ErrWebUserAlreadyExists)

	authed, err := svc.AuthenticateWebUser(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)

	_, err = svc.AuthenticateWebUser(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.AuthenticateWebUser(ctx, "nobody", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
