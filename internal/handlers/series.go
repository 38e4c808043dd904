package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/openshelf/catalog/internal/models"
	"github.com/openshelf/catalog/internal/mykafka"
	"github.com/openshelf/catalog/internal/util"
)

type SeriesHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

func (h *SeriesHandler) GetAllSeries(c echo.Context) error {
	libraryID, err := strconv.Atoi(c.Param("libraryId"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	var total int64
	if err := h.DB.Model(&models.Series{}).Where("library_id = ?", libraryID).Count(&total).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	var items []models.Series
	if err := h.DB.Where("library_id = ?", libraryID).
		Order("name ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": listMeta(page, limit, offset, total),
	})
}

func (h *SeriesHandler) GetSeries(c echo.Context) error {
	libraryID, err := strconv.Atoi(c.Param("libraryId"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var series models.Series
	if err := h.DB.Where("library_id = ?", libraryID).First(&series, id).Error; err != nil {
		return errorResponse(c, http.StatusNotFound, err)
	}

	return c.JSON(http.StatusOK, series)
}

func (h *SeriesHandler) CreateSeries(c echo.Context) error {
	libraryID, err := strconv.Atoi(c.Param("libraryId"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var req struct {
		Name      string `json:"name"`
		Active    *bool  `json:"active"`
		Copyright string `json:"copyright"`
		Notes     string `json:"notes"`
	}

	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	series := models.Series{
		LibraryID: uint(libraryID),
		Name:      req.Name,
		Active:    true,
		Copyright: req.Copyright,
		Notes:     req.Notes,
	}
	if req.Active != nil {
		series.Active = *req.Active
	}

	if err := h.DB.Create(&series).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	publishCatalogEvent(c, h.Producer, fmt.Sprint(series.ID), map[string]interface{}{
		"type":      "series_created",
		"seriesID":  series.ID,
		"libraryID": series.LibraryID,
	})

	return c.JSON(http.StatusCreated, series)
}

func (h *SeriesHandler) PatchSeries(c echo.Context) error {
	libraryID, err := strconv.Atoi(c.Param("libraryId"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var req struct {
		Name      *string `json:"name"`
		Active    *bool   `json:"active"`
		Copyright *string `json:"copyright"`
		Notes     *string `json:"notes"`
	}

	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var series models.Series
	if err := h.DB.Where("library_id = ?", libraryID).First(&series, id).Error; err != nil {
		return errorResponse(c, http.StatusNotFound, err)
	}

	if req.Name != nil {
		series.Name = *req.Name
	}
	if req.Active != nil {
		series.Active = *req.Active
	}
	if req.Copyright != nil {
		series.Copyright = *req.Copyright
	}
	if req.Notes != nil {
		series.Notes = *req.Notes
	}

	if err := h.DB.Save(&series).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	publishCatalogEvent(c, h.Producer, fmt.Sprint(series.ID), map[string]interface{}{
		"type":      "series_updated",
		"seriesID":  series.ID,
		"libraryID": series.LibraryID,
	})

	return c.JSON(http.StatusOK, series)
}

func (h *SeriesHandler) DeleteSeries(c echo.Context) error {
	libraryID, err := strconv.Atoi(c.Param("libraryId"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	if err := h.DB.Where("library_id = ?", libraryID).Delete(&models.Series{}, id).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	publishCatalogEvent(c, h.Producer, fmt.Sprint(id), map[string]interface{}{
		"type":     "series_deleted",
		"seriesID": id,
	})

	return c.NoContent(http.StatusNoContent)
}
