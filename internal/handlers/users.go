package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/openshelf/catalog/internal/hash"
	"github.com/openshelf/catalog/internal/logging"
	"github.com/openshelf/catalog/internal/models"
	"github.com/openshelf/catalog/internal/mykafka"
)

type UserHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

func (h *UserHandler) CreateUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_create")

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Name     string `json:"name"`
		Scope    string `json:"scope"`
		Active   *bool  `json:"active"`
	}

	if err := c.Bind(&req); err != nil {
		l.Warn("user_create_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Username == "" || req.Password == "" || req.Scope == "" {
		l.Warn("user_create_error", "status", 400, "reason", "missing_fields")
		return echo.NewHTTPError(http.StatusBadRequest, "username, password and scope are required")
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("user_create_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	var existing models.Account
	if err := h.DB.WithContext(ctx).Where("username = ?", req.Username).First(&existing).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			l.Error("user_create_error", "status", 500, "reason", "db_error", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	} else {
		l.Warn("user_create_failed", "status", 409, "reason", "user_exists")
		return echo.NewHTTPError(http.StatusConflict, "user already exists")
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	account := models.Account{
		Username:     req.Username,
		PasswordHash: pwHash,
		Name:         req.Name,
		Active:       active,
		Scope:        req.Scope,
	}
	if err := h.DB.WithContext(ctx).Create(&account).Error; err != nil {
		l.Error("user_create_failed", "status", 500, "reason", "db_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	event := map[string]interface{}{
		"id":       uuid.NewString(),
		"type":     "user_created",
		"UserID":   account.ID,
		"username": account.Username,
	}

	if h.Producer != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()
		if err := h.Producer.PublishEvent(ctx, "user_events", fmt.Sprint(account.ID), event); err != nil {
			c.Logger().Errorf("Kafka publish error: %v", err)
		}
	}

	l.Info("user_created", "status", 201)
	return c.JSON(http.StatusCreated, account)
}
