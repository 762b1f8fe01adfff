package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/timetracker/internal/utils"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// stores the token's subject under "user_id" in the request context.  A
// missing token and a bad token are both answered with 401, each with its
// own message.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "No token, authorization denied"})
			}
			uid, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				c.Logger().Debugf("rejected token: %v", err)
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Token is not valid"})
			}
			c.Set(userIDKey, uid)
			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}
