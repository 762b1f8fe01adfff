package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/timetracker/internal/handler"
)

// RegisterTasks mounts the task endpoints on the authenticated /tasks group.
// The static /day/:dayId routes take precedence over /:id.
func RegisterTasks(g *echo.Group, h *handler.TaskHandler) {
	g.POST("", h.CreateTask)
	g.GET("", h.ListTasks)
	g.GET("/day/:dayId", h.ListTasksByDay)
	g.DELETE("/day/:dayId", h.DeleteTasksByDay)
	g.GET("/:id", h.GetTask)
	g.PUT("/:id", h.UpdateTask)
	g.DELETE("/:id", h.DeleteTask)
}
