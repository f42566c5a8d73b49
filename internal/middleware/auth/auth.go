package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/webservicios/backoffice/internal/logging"
	"github.com/webservicios/backoffice/pkg/tokens"
)

// TokenCookie is the cookie carrying the bearer token when the client does
// not use the Authorization header. The header wins when both are present.
const TokenCookie = "token"

// Identity is the request-scoped authenticated caller. It is built once by
// Authenticate from verified claims and never mutated afterwards.
type Identity struct {
	UserID   string   `json:"id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

type ctxKey struct{}

// PermissionResolver re-expands role names into current permission names.
// Used by RequirePermissions for checks that must not trust the token's
// role snapshot.
type PermissionResolver interface {
	ResolvePermissions(ctx context.Context, roles []string) ([]string, error)
}

type Middleware struct {
	JWTSecret []byte
	Resolver  PermissionResolver
}

func New(secret []byte, resolver PermissionResolver) *Middleware {
	return &Middleware{JWTSecret: secret, Resolver: resolver}
}

// ExtractToken pulls the bearer token from the Authorization header,
// falling back to the token cookie.
func ExtractToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		if tok := strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")); tok != "" {
			return tok
		}
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// Authenticate verifies the presented token and attaches the decoded
// identity to the request. The store is never touched here; the token is
// self-contained.
func (m *Middleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := logging.FromContext(c.Request().Context()).With("mw", "auth.authenticate")

		tok := ExtractToken(c)
		if tok == "" {
			l.Warn("auth_rejected", "status", 401, "reason", "no token provided")
			return echo.NewHTTPError(http.StatusUnauthorized, "no token provided")
		}

		claims, err := tokens.ClaimsFromToken(tok, m.JWTSecret)
		if err != nil {
			reason := "invalid token"
			if errors.Is(err, tokens.ErrExpired) {
				reason = "token expired"
			}
			l.Warn("auth_rejected", "status", 401, "reason", reason, "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, reason)
		}

		ident := &Identity{
			UserID:   claims.Subject,
			Username: claims.Username,
			Roles:    claims.Roles,
		}
		SetIdentity(c, ident)

		return next(c)
	}
}

func SetIdentity(c echo.Context, ident *Identity) {
	req := c.Request()
	c.SetRequest(req.WithContext(context.WithValue(req.Context(), ctxKey{}, ident)))
}

// IdentityFrom returns the authenticated identity, or nil when the request
// never passed Authenticate.
func IdentityFrom(c echo.Context) *Identity {
	return FromContext(c.Request().Context())
}

func FromContext(ctx context.Context) *Identity {
	if v := ctx.Value(ctxKey{}); v != nil {
		if ident, ok := v.(*Identity); ok {
			return ident
		}
	}
	return nil
}

// Permit is the authorization gate: true iff required is empty or the
// identity carries at least one required role. A nil identity or an
// identity with no roles is always denied.
func Permit(ident *Identity, required []string) bool {
	if len(required) == 0 {
		return true
	}
	if ident == nil || len(ident.Roles) == 0 {
		return false
	}
	for _, have := range ident.Roles {
		for _, want := range required {
			if have == want {
				return true
			}
		}
	}
	return false
}

// RequireRoles denies with 403 unless the identity holds one of the
// required roles. The denial body lists required vs actual roles.
func (m *Middleware) RequireRoles(required ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident := IdentityFrom(c)
			if Permit(ident, required) {
				return next(c)
			}

			userRoles := []string{}
			if ident != nil {
				userRoles = ident.Roles
			}
			logging.FromContext(c.Request().Context()).Warn("authorization_denied",
				"status", 403, "required_roles", required, "user_roles", userRoles)
			return c.JSON(http.StatusForbidden, echo.Map{
				"message":        "insufficient role",
				"required_roles": required,
				"user_roles":     userRoles,
			})
		}
	}
}

// RequirePermissions re-resolves the identity's roles against the store and
// denies with 403 unless one of the required permissions is currently
// granted. Costs a store round-trip; use where role-snapshot staleness is
// not acceptable.
func (m *Middleware) RequirePermissions(required ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			l := logging.FromContext(ctx).With("mw", "auth.require_permissions")

			ident := IdentityFrom(c)
			if ident == nil {
				l.Warn("authorization_denied", "status", 401, "reason", "no identity")
				return echo.NewHTTPError(http.StatusUnauthorized, "no token provided")
			}

			perms, err := m.Resolver.ResolvePermissions(ctx, ident.Roles)
			if err != nil {
				l.Error("authorization_failed", "status", 500, "error", err)
				return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
			}

			for _, want := range required {
				for _, have := range perms {
					if have == want {
						return next(c)
					}
				}
			}

			l.Warn("authorization_denied", "status", 403,
				"required_permissions", required, "user_permissions", perms)
			return c.JSON(http.StatusForbidden, echo.Map{
				"message":              "insufficient permissions",
				"required_permissions": required,
				"user_permissions":     perms,
			})
		}
	}
}
