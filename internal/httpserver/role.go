package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/webservicios/backoffice/internal/logging"
	"github.com/webservicios/backoffice/internal/models"
	"github.com/webservicios/backoffice/internal/repo"
)

type RoleHTTP struct {
	Repo repo.GormRepo
}

func (h *RoleHTTP) ListRoles(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "role.list")

	roles, err := h.Repo.ListRoles(ctx)
	if err != nil {
		l.Error("list_roles_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list roles")
	}
	return c.JSON(http.StatusOK, roles)
}

func (h *RoleHTTP) CreateRole(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "role.create")

	var req struct {
		Name        string `json:"name"`
		Permissions []uint `json:"permissions"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("create_role_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" || req.Permissions == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "name and permissions are required")
	}

	perms, err := h.Repo.FindPermissionsByIDs(ctx, req.Permissions)
	if err != nil {
		l.Error("create_role_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create role")
	}
	if len(perms) != len(req.Permissions) {
		return echo.NewHTTPError(http.StatusBadRequest, "one or more permissions are invalid")
	}

	role := models.Role{Name: req.Name, Permissions: perms}
	if err := h.Repo.CreateRole(ctx, &role); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			l.Warn("create_role_failed", "status", 400, "reason", "name taken")
			return echo.NewHTTPError(http.StatusBadRequest, "role already exists")
		}
		l.Error("create_role_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create role")
	}

	l.Info("create_role_successful", "role_id", role.ID)
	return c.JSON(http.StatusCreated, role)
}

func (h *RoleHTTP) GetRole(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "role.get")

	id, err := parseID(c)
	if err != nil {
		return err
	}

	role, err := h.Repo.GetRoleByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "role not found")
		}
		l.Error("get_role_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get role")
	}
	return c.JSON(http.StatusOK, role)
}

func (h *RoleHTTP) UpdateRole(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "role.update")

	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req struct {
		Name        string `json:"name"`
		Permissions []uint `json:"permissions"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("update_role_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	role, err := h.Repo.GetRoleByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "role not found")
		}
		l.Error("update_role_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update role")
	}

	if req.Name != "" {
		role.Name = req.Name
	}

	var perms []models.Permission
	if req.Permissions != nil {
		perms, err = h.Repo.FindPermissionsByIDs(ctx, req.Permissions)
		if err != nil {
			l.Error("update_role_failed", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot update role")
		}
		if len(perms) != len(req.Permissions) {
			return echo.NewHTTPError(http.StatusBadRequest, "one or more permissions are invalid")
		}
	}

	if err := h.Repo.UpdateRole(ctx, role, perms); err != nil {
		l.Error("update_role_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update role")
	}

	updated, err := h.Repo.GetRoleByID(ctx, id)
	if err != nil {
		l.Error("update_role_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update role")
	}

	l.Info("update_role_successful", "role_id", id)
	return c.JSON(http.StatusOK, updated)
}

// DeleteRole removes the role even when users still reference it; the
// resolver tolerates and logs the dangling reference at resolution time.
func (h *RoleHTTP) DeleteRole(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "role.delete")

	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.Repo.DeleteRole(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "role not found")
		}
		l.Error("delete_role_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete role")
	}

	l.Info("delete_role_successful", "role_id", id)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "role deleted",
	})
}
