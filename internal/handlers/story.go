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

type StoryHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

func (h *StoryHandler) GetStories(c echo.Context) error {
	libraryID, err := strconv.Atoi(c.Param("libraryId"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	var total int64
	if err := h.DB.Model(&models.Story{}).Where("library_id = ?", libraryID).Count(&total).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	var items []models.Story
	if err := h.DB.Where("library_id = ?", libraryID).
		Order("name ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": listMeta(page, limit, offset, total),
	})
}

func (h *StoryHandler) GetStory(c echo.Context) error {
	libraryID, err := strconv.Atoi(c.Param("libraryId"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var story models.Story
	if err := h.DB.Where("library_id = ?", libraryID).First(&story, id).Error; err != nil {
		return errorResponse(c, http.StatusNotFound, err)
	}

	return c.JSON(http.StatusOK, story)
}

func (h *StoryHandler) CreateStory(c echo.Context) error {
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

	story := models.Story{
		LibraryID: uint(libraryID),
		Name:      req.Name,
		Active:    true,
		Copyright: req.Copyright,
		Notes:     req.Notes,
	}
	if req.Active != nil {
		story.Active = *req.Active
	}

	if err := h.DB.Create(&story).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	publishCatalogEvent(c, h.Producer, fmt.Sprint(story.ID), map[string]interface{}{
		"type":      "story_created",
		"storyID":   story.ID,
		"libraryID": story.LibraryID,
		"name":      story.Name,
	})

	return c.JSON(http.StatusCreated, story)
}

func (h *StoryHandler) PatchStory(c echo.Context) error {
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

	var story models.Story
	if err := h.DB.Where("library_id = ?", libraryID).First(&story, id).Error; err != nil {
		return errorResponse(c, http.StatusNotFound, err)
	}

	if req.Name != nil {
		story.Name = *req.Name
	}
	if req.Active != nil {
		story.Active = *req.Active
	}
	if req.Copyright != nil {
		story.Copyright = *req.Copyright
	}
	if req.Notes != nil {
		story.Notes = *req.Notes
	}

	if err := h.DB.Save(&story).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	publishCatalogEvent(c, h.Producer, fmt.Sprint(story.ID), map[string]interface{}{
		"type":      "story_updated",
		"storyID":   story.ID,
		"libraryID": story.LibraryID,
		"name":      story.Name,
	})

	return c.JSON(http.StatusOK, story)
}

func (h *StoryHandler) DeleteStory(c echo.Context) error {
	libraryID, err := strconv.Atoi(c.Param("libraryId"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	if err := h.DB.Where("library_id = ?", libraryID).Delete(&models.Story{}, id).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	publishCatalogEvent(c, h.Producer, fmt.Sprint(id), map[string]interface{}{
		"type":    "story_deleted",
		"storyID": id,
	})

	return c.NoContent(http.StatusNoContent)
}
