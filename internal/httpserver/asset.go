package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

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

// catalogEntryRequest is the write shape shared by both catalog collections.
type catalogEntryRequest struct {
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	PublishedAt time.Time `json:"published_at"`
	Year        string    `json:"year"`
	Link        string    `json:"link"`
	Published   bool      `json:"published"`
	Publisher   string    `json:"publisher"`
	Editable    bool      `json:"editable"`
}

func (r *catalogEntryRequest) validate() error {
	if r.Description == "" || r.Year == "" || r.Link == "" || r.Publisher == "" {
		return errors.New("description, year, link and publisher are required")
	}
	return nil
}

type AssetHTTP struct {
	Repo     repo.GormRepo
	Producer *mykafka.Producer
	ES       *elasticsearch.Client
}

func (h *AssetHTTP) publish(c echo.Context, eventType string, id uint) {
	ctx := c.Request().Context()
	event := map[string]any{
		"type":       eventType,
		"collection": "assets",
		"id":         id,
	}
	if err := h.Producer.PublishEvent(ctx, "catalog_events", fmt.Sprintf("assets-%d", id), event); err != nil {
		logging.FromContext(ctx).Error("publish_failed", "topic", "catalog_events", "error", err)
	}
}

func (h *AssetHTTP) syncIndex(c echo.Context, asset *models.Asset) {
	if h.ES == nil {
		return
	}
	ctx := c.Request().Context()
	doc, err := json.Marshal(search.Hit{
		Collection:  "assets",
		ID:          asset.ID,
		Description: asset.Description,
		Year:        asset.Year,
		Publisher:   asset.Publisher,
		Link:        asset.Link,
		Published:   asset.Published,
	})
	if err != nil {
		return
	}
	docID := fmt.Sprintf("assets-%d", asset.ID)
	if err := es.IndexDocument(ctx, h.ES, es.CatalogIndex, docID, string(doc)); err != nil {
		logging.FromContext(ctx).Error("index_failed", "doc_id", docID, "error", err)
	}
}

func (h *AssetHTTP) dropIndex(c echo.Context, id uint) {
	if h.ES == nil {
		return
	}
	ctx := c.Request().Context()
	docID := fmt.Sprintf("assets-%d", id)
	if err := es.DeleteDocument(ctx, h.ES, es.CatalogIndex, docID); err != nil {
		logging.FromContext(ctx).Error("index_delete_failed", "doc_id", docID, "error", err)
	}
}

func (h *AssetHTTP) ListAssets(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "asset.list")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Repo.ListAssets(ctx, offset, limit)
	if err != nil {
		l.Error("list_assets_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list assets")
	}

	return c.JSON(http.StatusOK, pageEnvelope(items, page, limit, offset, total))
}

func (h *AssetHTTP) GetAssetYears(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "asset.years")

	years, err := h.Repo.AssetYears(ctx)
	if err != nil {
		l.Error("asset_years_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list asset years")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": years})
}

func (h *AssetHTTP) GetAssetsByYear(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "asset.by_year")

	year := c.Param("year")
	if util.ParseIntDefault(year, -1) < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "year must be numeric")
	}

	items, err := h.Repo.AssetsByYear(ctx, year)
	if err != nil {
		l.Error("assets_by_year_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list assets by year")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items})
}

func (h *AssetHTTP) GetAssetsByPublisher(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "asset.by_publisher")

	items, err := h.Repo.AssetsByPublisher(ctx, c.Param("publisher"))
	if err != nil {
		l.Error("assets_by_publisher_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list assets by publisher")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items})
}

func (h *AssetHTTP) GetAsset(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "asset.get")

	id, err := parseID(c)
	if err != nil {
		return err
	}

	asset, err := h.Repo.GetAsset(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "asset not found")
		}
		l.Error("get_asset_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get asset")
	}
	return c.JSON(http.StatusOK, asset)
}

func (h *AssetHTTP) CreateAsset(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "asset.create")

	var req catalogEntryRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_asset_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := req.validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	asset := models.Asset{
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
	if err := h.Repo.CreateAsset(ctx, &asset); err != nil {
		l.Error("create_asset_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create asset")
	}

	h.publish(c, "asset_created", asset.ID)
	h.syncIndex(c, &asset)

	l.Info("create_asset_successful", "asset_id", asset.ID)
	return c.JSON(http.StatusCreated, asset)
}

func (h *AssetHTTP) UpdateAsset(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "asset.update")

	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req catalogEntryRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_asset_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := req.validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	asset, err := h.Repo.GetAsset(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "asset not found")
		}
		l.Error("update_asset_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update asset")
	}

	asset.Description = req.Description
	asset.StartDate = req.StartDate
	asset.EndDate = req.EndDate
	asset.PublishedAt = req.PublishedAt
	asset.Year = req.Year
	asset.Link = req.Link
	asset.Published = req.Published
	asset.Publisher = req.Publisher
	asset.Editable = req.Editable

	if err := h.Repo.UpdateAsset(ctx, asset); err != nil {
		l.Error("update_asset_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update asset")
	}

	h.publish(c, "asset_updated", asset.ID)
	h.syncIndex(c, asset)

	l.Info("update_asset_successful", "asset_id", id)
	return c.JSON(http.StatusOK, asset)
}

func (h *AssetHTTP) DeleteAsset(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "asset.delete")

	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.Repo.DeleteAsset(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "asset not found")
		}
		l.Error("delete_asset_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete asset")
	}

	h.publish(c, "asset_deleted", id)
	h.dropIndex(c, id)

	l.Info("delete_asset_successful", "asset_id", id)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "asset deleted",
	})
}
