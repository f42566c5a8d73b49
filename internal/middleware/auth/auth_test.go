package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webservicios/backoffice/pkg/tokens"
)

var testSecret = []byte("test-jwt-secret")

func TestPermit(t *testing.T) {
	t.Parallel()

	ident := &Identity{UserID: "1", Username: "alice", Roles: []string{"viewer", "asset_admin"}}

	tests := []struct {
		name     string
		ident    *Identity
		required []string
		want     bool
	}{
		{name: "empty required permits", ident: ident, required: nil, want: true},
		{name: "empty required permits nil identity", ident: nil, required: nil, want: true},
		{name: "matching role", ident: ident, required: []string{"asset_admin"}, want: true},
		{name: "one of several", ident: ident, required: []string{"super_admin", "viewer"}, want: true},
		{name: "no overlap", ident: ident, required: []string{"super_admin"}, want: false},
		{name: "nil identity denied", ident: nil, required: []string{"viewer"}, want: false},
		{name: "empty roles denied", ident: &Identity{UserID: "2"}, required: []string{"viewer"}, want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Permit(tt.ident, tt.required))
		})
	}
}

func newAuthContext(t *testing.T, header, cookie string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: TokenCookie, Value: cookie})
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func okHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, IdentityFrom(c))
}

func TestAuthenticate_BearerHeader(t *testing.T) {
	t.Parallel()

	mw := New(testSecret, nil)
	tok, _, err := tokens.Issue("7", "alice", []string{"viewer"}, testSecret, tokens.TokenTTL)
	require.NoError(t, err)

	c, rec := newAuthContext(t, "Bearer "+tok, "")
	require.NoError(t, mw.Authenticate(okHandler)(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var ident Identity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ident))
	assert.Equal(t, "7", ident.UserID)
	assert.Equal(t, "alice", ident.Username)
	assert.Equal(t, []string{"viewer"}, ident.Roles)
}

func TestAuthenticate_CookieFallback(t *testing.T) {
	t.Parallel()

	mw := New(testSecret, nil)
	tok, _, err := tokens.Issue("7", "alice", []string{"viewer"}, testSecret, tokens.TokenTTL)
	require.NoError(t, err)

	c, rec := newAuthContext(t, "", tok)
	require.NoError(t, mw.Authenticate(okHandler)(c))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticate_HeaderWinsOverCookie(t *testing.T) {
	t.Parallel()

	mw := New(testSecret, nil)
	headerTok, _, err := tokens.Issue("1", "header-user", []string{"viewer"}, testSecret, tokens.TokenTTL)
	require.NoError(t, err)
	cookieTok, _, err := tokens.Issue("2", "cookie-user", []string{"viewer"}, testSecret, tokens.TokenTTL)
	require.NoError(t, err)

	c, rec := newAuthContext(t, "Bearer "+headerTok, cookieTok)
	require.NoError(t, mw.Authenticate(okHandler)(c))

	var ident Identity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ident))
	assert.Equal(t, "header-user", ident.Username)
}

func TestAuthenticate_MissingToken(t *testing.T) {
	t.Parallel()

	mw := New(testSecret, nil)
	c, _ := newAuthContext(t, "", "")

	err := mw.Authenticate(okHandler)(c)
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	t.Parallel()

	mw := New(testSecret, nil)
	tok, _, err := tokens.Issue("7", "alice", []string{"viewer"}, testSecret, -time.Minute)
	require.NoError(t, err)

	c, _ := newAuthContext(t, "Bearer "+tok, "")
	herr := mw.Authenticate(okHandler)(c)
	require.Error(t, herr)
	he, ok := herr.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
	assert.Equal(t, "token expired", he.Message)
}

func TestAuthenticate_TamperedToken(t *testing.T) {
	t.Parallel()

	mw := New(testSecret, nil)
	tok, _, err := tokens.Issue("7", "alice", []string{"viewer"}, []byte("another-secret"), tokens.TokenTTL)
	require.NoError(t, err)

	c, _ := newAuthContext(t, "Bearer "+tok, "")
	herr := mw.Authenticate(okHandler)(c)
	require.Error(t, herr)
	he, ok := herr.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestRequireRoles_DenialListsRequiredAndActual(t *testing.T) {
	t.Parallel()

	mw := New(testSecret, nil)
	c, rec := newAuthContext(t, "", "")
	SetIdentity(c, &Identity{UserID: "7", Username: "alice", Roles: []string{"viewer"}})

	handler := mw.RequireRoles("super_admin")(okHandler)
	require.NoError(t, handler(c))
	require.Equal(t, http.StatusForbidden, rec.Code)

	var body struct {
		Message       string   `json:"message"`
		RequiredRoles []string `json:"required_roles"`
		UserRoles     []string `json:"user_roles"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"super_admin"}, body.RequiredRoles)
	assert.Equal(t, []string{"viewer"}, body.UserRoles)
	assert.NotEmpty(t, body.Message)
}

func TestRequireRoles_PermitsMatchingRole(t *testing.T) {
	t.Parallel()

	mw := New(testSecret, nil)
	c, rec := newAuthContext(t, "", "")
	SetIdentity(c, &Identity{UserID: "7", Username: "alice", Roles: []string{"asset_admin"}})

	handler := mw.RequireRoles("super_admin", "asset_admin")(okHandler)
	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

type stubResolver struct {
	perms map[string][]string
}

func (s *stubResolver) ResolvePermissions(_ context.Context, roles []string) ([]string, error) {
	var out []string
	for _, r := range roles {
		out = append(out, s.perms[r]...)
	}
	return out, nil
}

func TestRequirePermissions_FreshResolution(t *testing.T) {
	t.Parallel()

	resolver := &stubResolver{perms: map[string][]string{
		"viewer": {"catalog:read"},
	}}
	mw := New(testSecret, resolver)

	c, rec := newAuthContext(t, "", "")
	SetIdentity(c, &Identity{UserID: "7", Username: "alice", Roles: []string{"viewer"}})

	require.NoError(t, mw.RequirePermissions("catalog:read")(okHandler)(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c2, rec2 := newAuthContext(t, "", "")
	SetIdentity(c2, &Identity{UserID: "7", Username: "alice", Roles: []string{"viewer"}})

	require.NoError(t, mw.RequirePermissions("assets:manage")(okHandler)(c2))
	assert.Equal(t, http.StatusForbidden, rec2.Code)
}
