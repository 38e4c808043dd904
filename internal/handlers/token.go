package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/openshelf/catalog/internal/logging"
	"github.com/openshelf/catalog/internal/mykafka"
	authsvc "github.com/openshelf/catalog/internal/service/auth"
	"github.com/openshelf/catalog/internal/userdir"
)

type TokenHandler struct {
	Auth       *authsvc.Service
	Directory  *userdir.Directory
	Producer   *mykafka.Producer
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type tokenResponse struct {
	AccessToken    string `json:"access_token"`
	RefreshToken   string `json:"refresh_token,omitempty"`
	TokenType      string `json:"token_type"`
	Expires        int64  `json:"expires"`
	RefreshExpires int64  `json:"refresh_expires,omitempty"`
	UserID         uint   `json:"user_id"`
	Scope          string `json:"scope"`
}

// Issue is the grant-type driven token endpoint: the password grant
// authenticates credentials, the refresh_token grant trades a live refresh
// token for a brand-new pair.
func (h *TokenHandler) Issue(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "token_issue")

	var req struct {
		GrantType    string `json:"grant_type" form:"grant_type"`
		Username     string `json:"username" form:"username"`
		Password     string `json:"password" form:"password"`
		RefreshToken string `json:"refresh_token" form:"refresh_token"`
	}

	if err := c.Bind(&req); err != nil {
		l.Warn("token_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	switch req.GrantType {
	case "password":
		return h.passwordGrant(c, req.Username, req.Password)
	case "refresh_token":
		return h.refreshGrant(c, req.RefreshToken)
	default:
		l.Warn("token_error", "status", 400, "reason", "unsupported_grant_type")
		return echo.NewHTTPError(http.StatusBadRequest, "unsupported grant_type")
	}
}

func (h *TokenHandler) passwordGrant(c echo.Context, username, password string) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "token_issue", "grant", "password")

	principal, err := h.Auth.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, authsvc.ErrAuthenticationFailed) {
			l.Warn("token_failed", "status", 401, "reason", "invalid username or password")
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
		}
		l.Error("token_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	pair, err := h.Auth.IssueTokenPair(ctx, principal, h.AccessTTL, h.RefreshTTL)
	if err != nil {
		l.Error("token_failed", "status", 500, "reason", "cannot create token", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, map[string]interface{}{
		"id":     uuid.NewString(),
		"type":   "token_issued",
		"grant":  "password",
		"UserID": pair.UserID,
	}, pair.UserID)

	l.Info("token_issued", "status", 200)
	return c.JSON(http.StatusOK, h.response(pair))
}

func (h *TokenHandler) refreshGrant(c echo.Context, refreshToken string) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "token_issue", "grant", "refresh_token")

	row, err := h.Auth.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, authsvc.ErrInvalidToken) {
			l.Warn("token_failed", "status", 401, "reason", "invalid token")
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}
		l.Error("token_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	// Scope is re-read from the account so a refresh picks up scope changes
	// and a deactivated account stops minting new pairs.
	account, err := h.Directory.FindByID(ctx, row.UserID)
	if err != nil {
		if errors.Is(err, userdir.ErrNotFound) {
			l.Warn("token_failed", "status", 401, "reason", "invalid token")
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}
		l.Error("token_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if !account.Active {
		l.Warn("token_failed", "status", 401, "reason", "invalid token")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	principal := &authsvc.Principal{UserID: account.ID, Scope: account.Scope}
	pair, err := h.Auth.IssueTokenPair(ctx, principal, h.AccessTTL, h.RefreshTTL)
	if err != nil {
		l.Error("token_failed", "status", 500, "reason", "cannot create token", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, map[string]interface{}{
		"id":     uuid.NewString(),
		"type":   "token_issued",
		"grant":  "refresh_token",
		"UserID": pair.UserID,
	}, pair.UserID)

	l.Info("token_issued", "status", 200)
	return c.JSON(http.StatusOK, h.response(pair))
}

// Revoke deletes the bearer access token named in the Authorization header
// together with its dependent refresh tokens. Revoking an unknown token is a
// client error so forged or already-revoked tokens are reported as such.
func (h *TokenHandler) Revoke(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "token_revoke")

	token, ok := bearerToken(c)
	if !ok {
		l.Warn("revoke_failed", "status", 401, "reason", "missing_bearer")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	if err := h.Auth.RevokeAccessToken(ctx, token); err != nil {
		if errors.Is(err, authsvc.ErrInvalidToken) {
			l.Warn("revoke_failed", "status", 401, "reason", "invalid token")
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}
		l.Error("revoke_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, map[string]interface{}{
		"id":   uuid.NewString(),
		"type": "token_revoked",
	}, 0)

	l.Info("token_revoked", "status", 204)
	return c.NoContent(http.StatusNoContent)
}

func (h *TokenHandler) response(pair *authsvc.TokenPair) tokenResponse {
	resp := tokenResponse{
		AccessToken: pair.AccessToken,
		TokenType:   "Bearer",
		Expires:     pair.AccessExpiresAt.Unix(),
		UserID:      pair.UserID,
		Scope:       pair.Scope,
	}
	if pair.RefreshToken != "" {
		resp.RefreshToken = pair.RefreshToken
		resp.RefreshExpires = pair.RefreshExpiresAt.Unix()
	}
	return resp
}

func (h *TokenHandler) publish(c echo.Context, event map[string]interface{}, userID uint) {
	if h.Producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "token_events", fmt.Sprint(userID), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func bearerToken(c echo.Context) (string, bool) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return header[len(prefix):], true
}
