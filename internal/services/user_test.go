package services

import (
	"context"
	"testing"

	"github.com/mobilecollector/backoffice/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestUserService(users ...types.User) (*UserService, *fakeUserRepo) {
	repo := newFakeUserRepo(users...)
	svc := NewUserService(repo)
	svc.cost = bcrypt.MinCost
	return svc, repo
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestUserService()
	created, err := svc.Create(context.Background(), NewUserInput{
		FullName: "Dewi",
		Username: "dewi",
		Email:    "dewi@bank.test",
		Password: "rahasia123",
	})
	require.NoError(t, err)

	byUsername, err := svc.Authenticate(context.Background(), "dewi", "rahasia123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byUsername.ID)

	byEmail, err := svc.Authenticate(context.Background(), "dewi@bank.test", "rahasia123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	_, err = svc.Authenticate(context.Background(), "dewi", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "ghost", "rahasia123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateUnknownLoginStillComparesHash(t *testing.T) {
	svc, _ := newTestUserService()
	var hashes [][]byte
	svc.compare = func(hash, password []byte) error {
		hashes = append(hashes, hash)
		return bcrypt.CompareHashAndPassword(hash, password)
	}

	_, err := svc.Authenticate(context.Background(), "ghost", "rahasia123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	require.Len(t, hashes, 1)
	cost, err := bcrypt.Cost(hashes[0])
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
}

func TestCreateUserDefaultsToMarketing(t *testing.T) {
	svc, _ := newTestUserService()

	user, err := svc.Create(context.Background(), NewUserInput{FullName: "A", Username: "a", Email: "a@x", Password: "p"})
	require.NoError(t, err)
	assert.Equal(t, types.RoleMarketing, user.Role)
	assert.NotEqual(t, "p", user.PasswordHash)

	_, err = svc.Create(context.Background(), NewUserInput{FullName: "B", Username: "b", Email: "b@x", Password: "p", Role: "boss"})
	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestRegisterForcesMarketing(t *testing.T) {
	svc, _ := newTestUserService()

	user, err := svc.Register(context.Background(), NewUserInput{FullName: "A", Username: "a", Email: "a@x", Password: "p", Role: "SUPERADMIN"})
	require.NoError(t, err)
	assert.Equal(t, types.RoleMarketing, user.Role)
}

func TestCreateUserDuplicate(t *testing.T) {
	svc, _ := newTestUserService(types.User{ID: "u1", Username: "a", Email: "a@x"})

	_, err := svc.Create(context.Background(), NewUserInput{FullName: "A", Username: "a", Email: "other@x", Password: "p"})
	var dup *ConflictError
	assert.ErrorAs(t, err, &dup)
}

func TestTellers(t *testing.T) {
	svc, _ := newTestUserService(
		types.User{ID: "t1", FullName: "Teller 111", Role: types.RoleTeller, AccessToken: "111"},
		types.User{ID: "m1", FullName: "Dewi", Role: types.RoleMarketing},
	)

	tellers, err := svc.Tellers(context.Background())
	require.NoError(t, err)
	require.Len(t, tellers, 1)
	assert.Equal(t, types.Teller{ID: "t1", FullName: "Teller 111", AccessToken: "111"}, tellers[0])
}

func TestUpdateUser(t *testing.T) {
	svc, repo := newTestUserService(types.User{ID: "u1", FullName: "Old", Role: types.RoleMarketing, PasswordHash: "h"})

	name := "New"
	role := "teller"
	updated, err := svc.Update(context.Background(), "u1", UserPatch{FullName: &name, Role: &role})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.FullName)
	assert.Equal(t, types.RoleTeller, updated.Role)
	assert.Equal(t, "h", repo.users["u1"].PasswordHash)

	_, err = svc.Update(context.Background(), "nope", UserPatch{FullName: &name})
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}
