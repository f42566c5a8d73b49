package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/webservicios/backoffice/internal/es"
	"github.com/webservicios/backoffice/internal/logging"
	"github.com/webservicios/backoffice/internal/models"
	"github.com/webservicios/backoffice/internal/mykafka"
	"github.com/webservicios/backoffice/internal/repo"
	"github.com/webservicios/backoffice/internal/service/search"
	"github.com/webservicios/backoffice/internal/util"
)

// ServiceHTTP mirrors AssetHTTP over the services collection.
type ServiceHTTP struct {
	Repo     repo.GormRepo
	Producer *mykafka.Producer
	ES       *elasticsearch.Client
}

func (h *ServiceHTTP) publish(c echo.Context, eventType string, id uint) {
	ctx := c.Request().Context()
	event := map[string]any{
		"type":       eventType,
		"collection": "services",
		"id":         id,
	}
	if err := h.Producer.PublishEvent(ctx, "catalog_events", fmt.Sprintf("services-%d", id), event); err != nil {
		logging.FromContext(ctx).Error("publish_failed", "topic", "catalog_events", "error", err)
	}
}

func (h *ServiceHTTP) syncIndex(c echo.Context, entry *models.ServiceEntry) {
	if h.ES == nil {
		return
	}
	ctx := c.Request().Context()
	doc, err := json.Marshal(search.Hit{
		Collection:  "services",
		ID:          entry.ID,
		Description: entry.Description,
		Year:        entry.Year,
		Publisher:   entry.Publisher,
		Link:        entry.Link,
		Published:   entry.Published,
	})
	if err != nil {
		return
	}
	docID := fmt.Sprintf("services-%d", entry.ID)
	if err := es.IndexDocument(ctx, h.ES, es.CatalogIndex, docID, string(doc)); err != nil {
		logging.FromContext(ctx).Error("index_failed", "doc_id", docID, "error", err)
	}
}

func (h *ServiceHTTP) dropIndex(c echo.Context, id uint) {
	if h.ES == nil {
		return
	}
	ctx := c.Request().Context()
	docID := fmt.Sprintf("services-%d", id)
	if err := es.DeleteDocument(ctx, h.ES, es.CatalogIndex, docID); err != nil {
		logging.FromContext(ctx).Error("index_delete_failed", "doc_id", docID, "error", err)
	}
}

func (h *ServiceHTTP) ListServices(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "service.list")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Repo.ListServiceEntries(ctx, offset, limit)
	if err != nil {
		l.Error("list_services_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list services")
	}

	return c.JSON(http.StatusOK, pageEnvelope(items, page, limit, offset, total))
}

func (h *ServiceHTTP) GetServiceYears(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "service.years")

	years, err := h.Repo.ServiceYears(ctx)
	if err != nil {
		l.Error("service_years_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list service years")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": years})
}

func (h *ServiceHTTP) GetServicesByYear(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "service.by_year")

	year := c.Param("year")
	if util.ParseIntDefault(year, -1) < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "year must be numeric")
	}

	items, err := h.Repo.ServiceEntriesByYear(ctx, year)
	if err != nil {
		l.Error("services_by_year_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list services by year")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items})
}

func (h *ServiceHTTP) GetServicesByPublisher(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "service.by_publisher")

	items, err := h.Repo.ServiceEntriesByPublisher(ctx, c.Param("publisher"))
	if err != nil {
		l.Error("services_by_publisher_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list services by publisher")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items})
}

func (h *ServiceHTTP) GetService(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "service.get")

	id, err := parseID(c)
	if err != nil {
		return err
	}

	entry, err := h.Repo.GetServiceEntry(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "service not found")
		}
		l.Error("get_service_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get service")
	}
	return c.JSON(http.StatusOK, entry)
}

func (h *ServiceHTTP) CreateService(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "service.create")

	var req catalogEntryRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_service_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := req.validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	entry := models.ServiceEntry{
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		PublishedAt: req.PublishedAt,
		Year:        req.Year,
		Link:        req.Link,
		Published:   req.Published,
		Publisher:   req.Publisher,
		Editable:    req.Editable,
	}
	if err := h.Repo.CreateServiceEntry(ctx, &entry); err != nil {
		l.Error("create_service_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create service")
	}

	h.publish(c, "service_created", entry.ID)
	h.syncIndex(c, &entry)

	l.Info("create_service_successful", "service_id", entry.ID)
	return c.JSON(http.StatusCreated, entry)
}

func (h *ServiceHTTP) UpdateService(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "service.update")

	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req catalogEntryRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_service_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := req.validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	entry, err := h.Repo.GetServiceEntry(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "service not found")
		}
		l.Error("update_service_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update service")
	}

	entry.Description = req.Description
	entry.StartDate = req.StartDate
	entry.EndDate = req.EndDate
	entry.PublishedAt = req.PublishedAt
	entry.Year = req.Year
	entry.Link = req.Link
	entry.Published = req.Published
	entry.Publisher = req.Publisher
	entry.Editable = req.Editable

	if err := h.Repo.UpdateServiceEntry(ctx, entry); err != nil {
		l.Error("update_service_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update service")
	}

	h.publish(c, "service_updated", entry.ID)
	h.syncIndex(c, entry)

	l.Info("update_service_successful", "service_id", id)
	return c.JSON(http.StatusOK, entry)
}

func (h *ServiceHTTP) DeleteService(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "service.delete")

	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.Repo.DeleteServiceEntry(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "service not found")
		}
		l.Error("delete_service_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete service")
	}

	h.publish(c, "service_deleted", id)
	h.dropIndex(c, id)

	l.Info("delete_service_successful", "service_id", id)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "service deleted",
	})
}
