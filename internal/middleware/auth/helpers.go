package auth

import (
	"github.com/labstack/echo/v4"
)

func setPrincipal(c echo.Context, userID uint, scope, token string) {
	c.Set("userID", userID)
	c.Set("scope", scope)
	c.Set("accessToken", token)
}

func UserID(c echo.Context) (uint, bool) {
	id, ok := c.Get("userID").(uint)
	return id, ok
}

func Scope(c echo.Context) (string, bool) {
	scope, ok := c.Get("scope").(string)
	return scope, ok
}

func AccessToken(c echo.Context) (string, bool) {
	token, ok := c.Get("accessToken").(string)
	return token, ok
}
