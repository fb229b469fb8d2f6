package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventbooking/internal/domain"
)

type authFixture struct {
	svc    domain.AuthService
	users  *fakeUserRepo
	roles  *fakeRoleRepo
	hasher *fakePasswordHasher
	issuer *fakeTokenIssuer
	email  *fakeEmailService
}

func newAuthFixture() *authFixture {
	users := newFakeUserRepo()
	f := &authFixture{
		users:  users,
		roles:  newFakeRoleRepo(users),
		hasher: &fakePasswordHasher{},
		issuer: &fakeTokenIssuer{},
		email:  &fakeEmailService{},
	}
	f.svc = NewAuthService(f.users, f.roles, f.hasher, f.issuer, f.email, time.Hour, discardLogger())
	return f
}

func TestAuthService_Register(t *testing.T) {
	f := newAuthFixture()

	u, err := f.svc.Register(context.Background(), "  Ada@Example.COM ", "password123", " ada ")
	require.NoError(t, err)
	assert.Equal(t, "user-1", u.ID)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, "ada", u.Username)
	assert.Equal(t, "salt", u.Salt)
	assert.Equal(t, "hash-saltpassword123", u.PasswordHash)
	assert.Equal(t, []string{domain.RoleUser}, u.Roles)
	assert.Equal(t, []string{"role-user"}, f.users.assigned[u.ID])

	require.Len(t, f.email.welcomes, 1)
	assert.Equal(t, "ada@example.com", f.email.welcomes[0].Email)
}

func TestAuthService_Register_Validation(t *testing.T) {
	tests := []struct {
		name, email, password, username string
	}{
		{name: "bad email", email: "nope", password: "password123", username: "a"},
		{name: "short password", email: "a@example.com", password: "short", username: "a"},
		{name: "blank username", email: "a@example.com", password: "password123", username: " "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture()
			_, err := f.svc.Register(context.Background(), tt.email, tt.password, tt.username)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Empty(t, f.users.byID)
		})
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	f := newAuthFixture()
	_, err := f.svc.Register(context.Background(), "a@example.com", "password123", "a")
	require.NoError(t, err)

	_, err = f.svc.Register(context.Background(), "A@example.com", "password123", "b")
	require.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestAuthService_Register_WelcomeEmailFailureIgnored(t *testing.T) {
	f := newAuthFixture()
	f.email.err = errors.New("ses down")

	u, err := f.svc.Register(context.Background(), "a@example.com", "password123", "a")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
}

func TestAuthService_Login(t *testing.T) {
	f := newAuthFixture()
	_, err := f.svc.Register(context.Background(), "a@example.com", "password123", "a")
	require.NoError(t, err)

	token, u, err := f.svc.Login(context.Background(), " A@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "token-user-1", token)
	assert.Equal(t, []string{domain.RoleUser}, u.Roles)
	assert.Equal(t, []string{domain.RoleUser}, f.issuer.lastRoles)
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	f := newAuthFixture()
	_, err := f.svc.Register(context.Background(), "a@example.com", "password123", "a")
	require.NoError(t, err)

	_, _, err = f.svc.Login(context.Background(), "a@example.com", "wrong-password")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, _, err = f.svc.Login(context.Background(), "nobody@example.com", "password123")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthService_Login_StorageError(t *testing.T) {
	f := newAuthFixture()
	f.users.getErr = errors.New("db down")

	_, _, err := f.svc.Login(context.Background(), "a@example.com", "password123")
	require.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	f := newAuthFixture()

	u, err := f.svc.EnsureAdmin(context.Background(), "root@example.com", "password123", "root")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{domain.RoleUser, domain.RoleAdmin}, u.Roles)
	assert.Empty(t, f.email.welcomes)

	again, err := f.svc.EnsureAdmin(context.Background(), "root@example.com", "ignored1", "root")
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)

	_, loggedIn, err := f.svc.Login(context.Background(), "root@example.com", "password123")
	require.NoError(t, err)
	assert.Contains(t, loggedIn.Roles, domain.RoleAdmin)
}
