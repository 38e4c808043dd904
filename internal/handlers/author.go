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

type AuthorHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

func (h *AuthorHandler) GetAuthors(c echo.Context) error {
	libraryID, err := strconv.Atoi(c.Param("libraryId"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	var total int64
	if err := h.DB.Model(&models.Author{}).Where("library_id = ?", libraryID).Count(&total).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	var items []models.Author
	if err := h.DB.Where("library_id = ?", libraryID).
		Order("last_name ASC, first_name ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": listMeta(page, limit, offset, total),
	})
}

func (h *AuthorHandler) GetAuthor(c echo.Context) error {
	libraryID, err := strconv.Atoi(c.Param("libraryId"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var author models.Author
	if err := h.DB.Where("library_id = ?", libraryID).First(&author, id).Error; err != nil {
		return errorResponse(c, http.StatusNotFound, err)
	}

	return c.JSON(http.StatusOK, author)
}

func (h *AuthorHandler) CreateAuthor(c echo.Context) error {
	libraryID, err := strconv.Atoi(c.Param("libraryId"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var req struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Active    *bool  `json:"active"`
		Notes     string `json:"notes"`
	}

	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	if req.FirstName == "" || req.LastName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "first_name and last_name are required")
	}

	author := models.Author{
		LibraryID: uint(libraryID),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Active:    true,
		Notes:     req.Notes,
	}
	if req.Active != nil {
		author.Active = *req.Active
	}

	if err := h.DB.Create(&author).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	publishCatalogEvent(c, h.Producer, fmt.Sprint(author.ID), map[string]interface{}{
		"type":      "author_created",
		"authorID":  author.ID,
		"libraryID": author.LibraryID,
	})

	return c.JSON(http.StatusCreated, author)
}

func (h *AuthorHandler) PatchAuthor(c echo.Context) error {
	libraryID, err := strconv.Atoi(c.Param("libraryId"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var req struct {
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
		Active    *bool   `json:"active"`
		Notes     *string `json:"notes"`
	}

	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var author models.Author
	if err := h.DB.Where("library_id = ?", libraryID).First(&author, id).Error; err != nil {
		return errorResponse(c, http.StatusNotFound, err)
	}

	if req.FirstName != nil {
		author.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		author.LastName = *req.LastName
	}
	if req.Active != nil {
		author.Active = *req.Active
	}
	if req.Notes != nil {
		author.Notes = *req.Notes
	}

	if err := h.DB.Save(&author).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	publishCatalogEvent(c, h.Producer, fmt.Sprint(author.ID), map[string]interface{}{
		"type":      "author_updated",
		"authorID":  author.ID,
		"libraryID": author.LibraryID,
	})

	return c.JSON(http.StatusOK, author)
}

func (h *AuthorHandler) DeleteAuthor(c echo.Context) error {
	libraryID, err := strconv.Atoi(c.Param("libraryId"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	if err := h.DB.Where("library_id = ?", libraryID).Delete(&models.Author{}, id).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	publishCatalogEvent(c, h.Producer, fmt.Sprint(id), map[string]interface{}{
		"type":     "author_deleted",
		"authorID": id,
	})

	return c.NoContent(http.StatusNoContent)
}
