package middleware

import "github.com/labstack/echo/v4"

const userIDKey = "user_id"

// UserID returns the id JWTAuth stored in the context, or "" for
// unauthenticated requests.
func UserID(c echo.Context) string {
	if v, ok := c.Get(userIDKey).(string); ok {
		return v
	}
	return ""
}

// identity is the rate limit and cache key component for the caller.
func identity(c echo.Context) string {
	if uid := UserID(c); uid != "" {
		return uid
	}
	return "anon"
}
