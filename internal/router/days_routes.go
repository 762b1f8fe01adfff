package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/timetracker/internal/handler"
)

// RegisterDays mounts the day endpoints on the authenticated /days group.
func RegisterDays(g *echo.Group, h *handler.DayHandler) {
	g.POST("", h.CreateDay)
	g.GET("", h.ListDays)
	g.GET("/:id", h.GetDay)
	g.DELETE("/:id", h.DeleteDay)
}
