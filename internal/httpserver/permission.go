package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/webservicios/backoffice/internal/logging"
	"github.com/webservicios/backoffice/internal/models"
	"github.com/webservicios/backoffice/internal/repo"
)

type PermissionHTTP struct {
	Repo repo.GormRepo
}

func (h *PermissionHTTP) ListPermissions(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "permission.list")

	perms, err := h.Repo.ListPermissions(ctx)
	if err != nil {
		l.Error("list_permissions_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list permissions")
	}
	return c.JSON(http.StatusOK, perms)
}

func (h *PermissionHTTP) CreatePermission(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "permission.create")

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("create_permission_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	perm := models.Permission{Name: req.Name, Description: req.Description}
	if err := h.Repo.CreatePermission(ctx, &perm); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			l.Warn("create_permission_failed", "status", 400, "reason", "name taken")
			return echo.NewHTTPError(http.StatusBadRequest, "permission already exists")
		}
		l.Error("create_permission_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create permission")
	}

	l.Info("create_permission_successful", "permission_id", perm.ID)
	return c.JSON(http.StatusCreated, perm)
}

func (h *PermissionHTTP) GetPermission(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "permission.get")

	id, err := parseID(c)
	if err != nil {
		return err
	}

	perm, err := h.Repo.GetPermissionByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "permission not found")
		}
		l.Error("get_permission_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get permission")
	}
	return c.JSON(http.StatusOK, perm)
}

func (h *PermissionHTTP) UpdatePermission(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "permission.update")

	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("update_permission_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	perm, err := h.Repo.GetPermissionByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "permission not found")
		}
		l.Error("update_permission_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update permission")
	}

	if req.Name != "" {
		perm.Name = req.Name
	}
	if req.Description != "" {
		perm.Description = req.Description
	}

	if err := h.Repo.UpdatePermission(ctx, perm); err != nil {
		l.Error("update_permission_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update permission")
	}

	l.Info("update_permission_successful", "permission_id", id)
	return c.JSON(http.StatusOK, perm)
}

func (h *PermissionHTTP) DeletePermission(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "permission.delete")

	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.Repo.DeletePermission(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "permission not found")
		}
		l.Error("delete_permission_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete permission")
	}

	l.Info("delete_permission_successful", "permission_id", id)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "permission deleted",
	})
}
