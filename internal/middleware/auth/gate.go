package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	authsvc "github.com/openshelf/catalog/internal/service/auth"
)

const (
	ScopeRegular   = "regular"
	ScopeAdmin     = "admin"
	ScopeSuperuser = "superuser"
)

// Gate turns orchestrator validation results into request authorization.
// Token validity is always decided before scope sufficiency, so an invalid
// token gets the same 401 on every route regardless of required scope.
type Gate struct {
	Auth *authsvc.Service
}

func (g *Gate) RequireAny(next echo.HandlerFunc) echo.HandlerFunc {
	return g.require(next, "")
}

func (g *Gate) RequireRegular(next echo.HandlerFunc) echo.HandlerFunc {
	return g.require(next, ScopeRegular)
}

func (g *Gate) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return g.require(next, ScopeAdmin)
}

func (g *Gate) RequireSuperuser(next echo.HandlerFunc) echo.HandlerFunc {
	return g.require(next, ScopeSuperuser)
}

func (g *Gate) require(next echo.HandlerFunc, scope string) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := bearerToken(c)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}

		row, err := g.Auth.ValidateAccessToken(c.Request().Context(), token)
		if err != nil {
			if errors.Is(err, authsvc.ErrInvalidToken) {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}

		if scope != "" && !hasScope(row.Scope, scope) {
			return echo.NewHTTPError(http.StatusForbidden, "not enough rights")
		}

		setPrincipal(c, row.UserID, row.Scope, token)
		return next(c)
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

// hasScope treats the granted scope as a space-separated word list.
func hasScope(granted, required string) bool {
	for _, word := range strings.Fields(granted) {
		if word == required {
			return true
		}
	}
	return false
}
