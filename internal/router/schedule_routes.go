package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/avereth/testing-center/internal/handler"    // schedule handlers
	"github.com/avereth/testing-center/internal/middleware" // JWT + role middlewares
)

// RegisterSchedule registers the slot negotiation endpoints under
// /v1/enrollments/:id/schedule.  Students book their own slots; admins may
// drive the same flow on a student's behalf.
func RegisterSchedule(e *echo.Echo, s *handler.ScheduleHandler, jwtSecret string) {
	g := e.Group(
		"/v1/enrollments/:id/schedule",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("STUDENT", "ADMIN"),
	)

	g.GET("", s.Overview)
	g.GET("/days/:day", s.Day)
	g.POST("/propose", s.Propose)
	g.PATCH("/duration", s.Duration)
	g.POST("/confirm", s.Confirm)
}
