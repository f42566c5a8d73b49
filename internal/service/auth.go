package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/webservicios/backoffice/internal/hash"
	"github.com/webservicios/backoffice/internal/logging"
	"github.com/webservicios/backoffice/internal/models"
	"github.com/webservicios/backoffice/internal/repo"
	"github.com/webservicios/backoffice/pkg/tokens"
)

const DefaultRole = "viewer"

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoRolesAssigned    = errors.New("no roles assigned")
	ErrDuplicateUser      = errors.New("user already exists")
	ErrInvalidRole        = errors.New("invalid role")
)

type AuthService struct {
	Repo      repo.GormRepo
	JWTSecret []byte
}

// PublicUser is the account view returned to clients. The password hash
// never leaves the service layer.
type PublicUser struct {
	ID          uint     `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      PublicUser
}

// Login runs the single-step credential check: look the account up by
// email, verify the password, resolve roles, issue the token. Unknown
// email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	if email == "" || password == "" {
		return nil, ErrValidation
	}

	user, err := s.Repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("login_failed", "status", 400, "reason", "unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 400, "reason", "password mismatch", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	if len(user.Roles) == 0 {
		l.Warn("login_failed", "status", 400, "reason", "no roles assigned", "user_id", user.ID)
		return nil, ErrNoRolesAssigned
	}

	return s.issueFor(ctx, user)
}

// Register creates the account and authenticates it in one step. Role names
// must all exist; a single unknown name fails the whole registration.
func (s *AuthService) Register(ctx context.Context, username, email, password string, roleNames []string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if username == "" || email == "" || password == "" {
		return nil, ErrValidation
	}

	if len(roleNames) == 0 {
		roleNames = []string{DefaultRole}
	}

	taken, err := s.Repo.UserTaken(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if taken {
		l.Warn("register_failed", "status", 400, "reason", "username or email taken")
		return nil, ErrDuplicateUser
	}

	roles, err := s.Repo.FindRolesByNames(ctx, roleNames)
	if err != nil {
		return nil, err
	}
	if len(roles) != len(roleNames) {
		l.Warn("register_failed", "status", 400, "reason", "unknown role in request")
		return nil, ErrInvalidRole
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("register_failed", "status", 500, "reason", "cannot hash password", "error", err)
		return nil, err
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: pwHash,
		Roles:        roles,
	}
	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		return nil, err
	}

	l.Info("register_successful", "user_id", user.ID)
	return s.issueFor(ctx, &user)
}

func (s *AuthService) issueFor(ctx context.Context, user *models.User) (*LoginResult, error) {
	roleNames := user.RoleNames()

	token, exp, err := tokens.Issue(strconv.FormatUint(uint64(user.ID), 10), user.Username, roleNames, s.JWTSecret, tokens.TokenTTL)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token:     token,
		ExpiresAt: exp,
		User: PublicUser{
			ID:          user.ID,
			Username:    user.Username,
			Email:       user.Email,
			Roles:       roleNames,
			Permissions: flattenPermissions(user.Roles),
		},
	}, nil
}

func flattenPermissions(roles []models.Role) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, role := range roles {
		for _, perm := range role.Permissions {
			if _, ok := seen[perm.Name]; ok {
				continue
			}
			seen[perm.Name] = struct{}{}
			out = append(out, perm.Name)
		}
	}
	return out
}
