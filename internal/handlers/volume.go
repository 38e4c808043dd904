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

type VolumeHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

func (h *VolumeHandler) GetVolumes(c echo.Context) error {
	libraryID, err := strconv.Atoi(c.Param("libraryId"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	var total int64
	if err := h.DB.Model(&models.Volume{}).Where("library_id = ?", libraryID).Count(&total).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	var items []models.Volume
	if err := h.DB.Where("library_id = ?", libraryID).
		Order("name ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": listMeta(page, limit, offset, total),
	})
}

func (h *VolumeHandler) GetVolume(c echo.Context) error {
	libraryID, err := strconv.Atoi(c.Param("libraryId"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var volume models.Volume
	if err := h.DB.Where("library_id = ?", libraryID).First(&volume, id).Error; err != nil {
		return errorResponse(c, http.StatusNotFound, err)
	}

	return c.JSON(http.StatusOK, volume)
}

func (h *VolumeHandler) CreateVolume(c echo.Context) error {
	libraryID, err := strconv.Atoi(c.Param("libraryId"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var req struct {
		Name     string `json:"name"`
		Active   *bool  `json:"active"`
		Google   string `json:"google_id"`
		Isbn     string `json:"isbn"`
		Location string `json:"location"`
		Read     bool   `json:"read"`
		Notes    string `json:"notes"`
	}

	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	volume := models.Volume{
		LibraryID: uint(libraryID),
		Name:      req.Name,
		Active:    true,
		Google:    req.Google,
		Isbn:      req.Isbn,
		Location:  req.Location,
		Read:      req.Read,
		Notes:     req.Notes,
	}
	if req.Active != nil {
		volume.Active = *req.Active
	}

	if err := h.DB.Create(&volume).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	publishCatalogEvent(c, h.Producer, fmt.Sprint(volume.ID), map[string]interface{}{
		"type":      "volume_created",
		"volumeID":  volume.ID,
		"libraryID": volume.LibraryID,
	})

	return c.JSON(http.StatusCreated, volume)
}

func (h *VolumeHandler) PatchVolume(c echo.Context) error {
	libraryID, err := strconv.Atoi(c.Param("libraryId"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var req struct {
		Name     *string `json:"name"`
		Active   *bool   `json:"active"`
		Google   *string `json:"google_id"`
		Isbn     *string `json:"isbn"`
		Location *string `json:"location"`
		Read     *bool   `json:"read"`
		Notes    *string `json:"notes"`
	}

	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var volume models.Volume
	if err := h.DB.Where("library_id = ?", libraryID).First(&volume, id).Error; err != nil {
		return errorResponse(c, http.StatusNotFound, err)
	}

	if req.Name != nil {
		volume.Name = *req.Name
	}
	if req.Active != nil {
		volume.Active = *req.Active
	}
	if req.Google != nil {
		volume.Google = *req.Google
	}
	if req.Isbn != nil {
		volume.Isbn = *req.Isbn
	}
	if req.Location != nil {
		volume.Location = *req.Location
	}
	if req.Read != nil {
		volume.Read = *req.Read
	}
	if req.Notes != nil {
		volume.Notes = *req.Notes
	}

	if err := h.DB.Save(&volume).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	publishCatalogEvent(c, h.Producer, fmt.Sprint(volume.ID), map[string]interface{}{
		"type":      "volume_updated",
		"volumeID":  volume.ID,
		"libraryID": volume.LibraryID,
	})

	return c.JSON(http.StatusOK, volume)
}

func (h *VolumeHandler) DeleteVolume(c echo.Context) error {
	libraryID, err := strconv.Atoi(c.Param("libraryId"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	if err := h.DB.Where("library_id = ?", libraryID).Delete(&models.Volume{}, id).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	publishCatalogEvent(c, h.Producer, fmt.Sprint(id), map[string]interface{}{
		"type":     "volume_deleted",
		"volumeID": id,
	})

	return c.NoContent(http.StatusNoContent)
}
