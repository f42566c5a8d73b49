package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/webservicios/backoffice/internal/logging"
	authmw "github.com/webservicios/backoffice/internal/middleware/auth"
	"github.com/webservicios/backoffice/internal/mykafka"
	"github.com/webservicios/backoffice/internal/service"
	"github.com/webservicios/backoffice/pkg/tokens"
)

type AuthHTTP struct {
	Svc      *service.AuthService
	Producer *mykafka.Producer
}

// CreateTokenCookie builds the HTTP-only session cookie. Strict SameSite:
// the back office frontend is same-origin.
func CreateTokenCookie(value string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     authmw.TokenCookie,
		Value:    value,
		Path:     "/",
		Expires:  exp,
		MaxAge:   int(time.Until(exp).Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}

// DeleteTokenCookie overwrites the session cookie with an immediate expiry.
func DeleteTokenCookie() *http.Cookie {
	return &http.Cookie{
		Name:     authmw.TokenCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrInvalidCredentials):
			// unified message: never reveal which half of the pair was wrong
			return echo.NewHTTPError(http.StatusBadRequest, "invalid credentials")
		case errors.Is(err, service.ErrNoRolesAssigned):
			return echo.NewHTTPError(http.StatusBadRequest, "no roles assigned")
		default:
			l.Error("login_failed", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
		}
	}

	c.SetCookie(CreateTokenCookie(res.Token, res.ExpiresAt))
	l.Info("login_successful", "user_id", res.User.ID)

	return c.JSON(http.StatusOK, echo.Map{
		"token": res.Token,
		"user":  res.User,
	})
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req struct {
		Username string   `json:"username"`
		Email    string   `json:"email"`
		Password string   `json:"password"`
		Roles    []string `json:"roles"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Register(ctx, req.Username, req.Email, req.Password, req.Roles)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
		case errors.Is(err, service.ErrDuplicateUser):
			return echo.NewHTTPError(http.StatusBadRequest, "user already exists")
		case errors.Is(err, service.ErrInvalidRole):
			return echo.NewHTTPError(http.StatusBadRequest, "one or more roles are invalid")
		default:
			l.Error("register_failed", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
		}
	}

	if err := h.Producer.PublishEvent(ctx, "user_events", res.User.Username, map[string]any{
		"type":     "user_registered",
		"user_id":  res.User.ID,
		"username": res.User.Username,
		"roles":    res.User.Roles,
	}); err != nil {
		l.Error("publish_failed", "topic", "user_events", "error", err)
	}

	c.SetCookie(CreateTokenCookie(res.Token, res.ExpiresAt))
	l.Info("register_successful", "user_id", res.User.ID)

	return c.JSON(http.StatusCreated, echo.Map{
		"token": res.Token,
		"user":  res.User,
	})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	c.SetCookie(DeleteTokenCookie())
	logging.FromContext(c.Request().Context()).Info("logout_successful")
	return c.JSON(http.StatusOK, echo.Map{
		"message": "logged out",
	})
}

// Check validates the presented token without touching the store and
// reports the decoded identity. Expired and invalid tokens both answer
// 401 with authenticated:false.
func (h *AuthHTTP) Check(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.check")

	tok := authmw.ExtractToken(c)
	if tok == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{
			"authenticated": false,
			"message":       "no token provided",
		})
	}

	claims, err := tokens.ClaimsFromToken(tok, h.Svc.JWTSecret)
	if err != nil {
		reason := "invalid token"
		if errors.Is(err, tokens.ErrExpired) {
			reason = "token expired"
		}
		l.Warn("check_failed", "status", 401, "reason", reason)
		return c.JSON(http.StatusUnauthorized, echo.Map{
			"authenticated": false,
			"message":       reason,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"authenticated": true,
		"user": echo.Map{
			"id":       claims.Subject,
			"username": claims.Username,
			"roles":    claims.Roles,
		},
	})
}
