package service

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/webservicios/backoffice/internal/models"
	"github.com/webservicios/backoffice/internal/repo"
	"github.com/webservicios/backoffice/pkg/tokens"
)

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Permission{}, &models.Role{}, &models.User{},
	))

	rp := repo.GormRepo{DB: db}
	require.NoError(t, rp.SeedDefaultRoles(context.Background()))

	return &AuthService{
		Repo:      rp,
		JWTSecret: []byte("test-jwt-secret"),
	}
}

func TestAuthService_Register_DefaultsToViewer(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, "alice", "a@x.com", "secret123", nil)
	require.NoError(t, err)
	require.NotNil(t, res)
	require.NotEmpty(t, res.Token)

	assert.Equal(t, "alice", res.User.Username)
	assert.Equal(t, []string{"viewer"}, res.User.Roles)
	assert.Contains(t, res.User.Permissions, "catalog:read")

	claims, err := tokens.ClaimsFromToken(res.Token, svc.JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, []string{"viewer"}, claims.Roles)
	assert.Equal(t, "alice", claims.Username)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "a@x.com", "secret123", nil)
	require.NoError(t, err)

	_, err = svc.Register(ctx, "bob", "a@x.com", "secret123", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateUser)

	_, err = svc.Register(ctx, "alice", "other@x.com", "secret123", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateUser)

	// the duplicate answer wins even when the supplied roles are bogus
	_, err = svc.Register(ctx, "bob", "a@x.com", "secret123", []string{"no_such_role"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateUser)
}

func TestAuthService_Register_UnknownRoleFailsWhole(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "a@x.com", "secret123", []string{"viewer", "no_such_role"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRole)

	// nothing was created
	taken, err := svc.Repo.UserTaken(ctx, "alice", "a@x.com")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestAuthService_Register_Validation(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{name: "empty username", username: "", email: "a@x.com", password: "secret"},
		{name: "empty email", username: "alice", email: "", password: "secret"},
		{name: "empty password", username: "alice", email: "a@x.com", password: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, err := svc.Register(ctx, tt.username, tt.email, tt.password, nil)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestAuthService_Login_SubjectMatchesAccount(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "alice", "a@x.com", "secret123", []string{"asset_admin"})
	require.NoError(t, err)

	res, err := svc.Login(ctx, "a@x.com", "secret123")
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)

	claims, err := tokens.ClaimsFromToken(res.Token, svc.JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, reg.User.ID)
	assert.Equal(t, "asset_admin", claims.Roles[0])

	var user models.User
	require.NoError(t, svc.Repo.DB.Where("username = ?", "alice").First(&user).Error)
	assert.Equal(t, user.ID, res.User.ID)
}

func TestAuthService_Login_WrongPasswordAndUnknownEmailIndistinguishable(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "a@x.com", "secret123", nil)
	require.NoError(t, err)

	_, errWrongPw := svc.Login(ctx, "a@x.com", "not-the-password")
	require.Error(t, errWrongPw)
	assert.ErrorIs(t, errWrongPw, ErrInvalidCredentials)

	_, errNoUser := svc.Login(ctx, "ghost@x.com", "secret123")
	require.Error(t, errNoUser)
	assert.ErrorIs(t, errNoUser, ErrInvalidCredentials)

	assert.Equal(t, errWrongPw.Error(), errNoUser.Error())
}

func TestAuthService_Login_NoRolesAssigned(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "alice", "a@x.com", "secret123", nil)
	require.NoError(t, err)

	// administrative edit strips every role
	user, err := svc.Repo.GetUserByID(ctx, reg.User.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Repo.UpdateUser(ctx, user, []models.Role{}))

	res, err := svc.Login(ctx, "a@x.com", "secret123")
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrNoRolesAssigned)
}

func TestAuthService_Login_Validation(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	for _, tt := range []struct{ email, password string }{
		{"", "secret"},
		{"a@x.com", ""},
	} {
		res, err := svc.Login(ctx, tt.email, tt.password)
		require.Error(t, err)
		assert.Nil(t, res)
		assert.ErrorIs(t, err, ErrValidation)
	}
}
