package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/openshelf/catalog/internal/models"
	"github.com/openshelf/catalog/internal/mykafka"
	"github.com/openshelf/catalog/internal/util"
)

type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type LibraryHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

func errorResponse(c echo.Context, code int, err error) error {
	return c.JSON(code, Response{
		Status:  "error",
		Message: err.Error(),
	})
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func publishCatalogEvent(c echo.Context, p *mykafka.Producer, key string, event map[string]interface{}) {
	if p == nil {
		return
	}
	event["id"] = uuid.NewString()
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := p.PublishEvent(ctx, "catalog_events", key, event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func listMeta(page, limit, offset int, total int64) map[string]any {
	return map[string]any{
		"page":        page,
		"size":        limit,
		"total":       total,
		"total_pages": (total + int64(limit) - 1) / int64(limit),
		"has_prev":    page > 1,
		"has_next":    int64(offset+limit) < total,
	}
}

func (h *LibraryHandler) GetLibrary(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("libraryId"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var library models.Library
	if err := h.DB.First(&library, id).Error; err != nil {
		return errorResponse(c, http.StatusNotFound, err)
	}

	return c.JSON(http.StatusOK, library)
}

func (h *LibraryHandler) GetLibraries(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	var total int64
	if err := h.DB.Model(&models.Library{}).Count(&total).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	var items []models.Library
	if err := h.DB.Model(&models.Library{}).Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": listMeta(page, limit, offset, total),
	})
}

func (h *LibraryHandler) CreateLibrary(c echo.Context) error {
	var req struct {
		Name   string `json:"name"`
		Active *bool  `json:"active"`
		Notes  string `json:"notes"`
		Scope  string `json:"scope"`
	}

	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	if req.Name == "" || req.Scope == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name and scope are required")
	}

	library := models.Library{
		Name:   req.Name,
		Active: true,
		Notes:  req.Notes,
		Scope:  req.Scope,
	}
	if req.Active != nil {
		library.Active = *req.Active
	}

	if err := h.DB.Create(&library).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	publishCatalogEvent(c, h.Producer, fmt.Sprint(library.ID), map[string]interface{}{
		"type":      "library_created",
		"libraryID": library.ID,
		"name":      library.Name,
	})

	return c.JSON(http.StatusCreated, library)
}

func (h *LibraryHandler) PatchLibrary(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("libraryId"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var req struct {
		Name   *string `json:"name"`
		Active *bool   `json:"active"`
		Notes  *string `json:"notes"`
		Scope  *string `json:"scope"`
	}

	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var library models.Library
	if err := h.DB.First(&library, id).Error; err != nil {
		return errorResponse(c, http.StatusNotFound, err)
	}

	if req.Name != nil {
		library.Name = *req.Name
	}
	if req.Active != nil {
		library.Active = *req.Active
	}
	if req.Notes != nil {
		library.Notes = *req.Notes
	}
	if req.Scope != nil {
		library.Scope = *req.Scope
	}

	if err := h.DB.Save(&library).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	publishCatalogEvent(c, h.Producer, fmt.Sprint(library.ID), map[string]interface{}{
		"type":      "library_updated",
		"libraryID": library.ID,
		"name":      library.Name,
	})

	return c.JSON(http.StatusOK, library)
}

func (h *LibraryHandler) DeleteLibrary(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("libraryId"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	if err := h.DB.Delete(&models.Library{}, id).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	publishCatalogEvent(c, h.Producer, fmt.Sprint(id), map[string]interface{}{
		"type":      "library_deleted",
		"libraryID": id,
	})

	return c.NoContent(http.StatusNoContent)
}
