package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/avereth/testing-center/internal/handler"    // admin handlers
	"github.com/avereth/testing-center/internal/middleware" // JWT + role middlewares
)

// RegisterAdmin registers ADMIN-scoped endpoints under /v1/admin.
// All routes require a valid JWT and ADMIN role.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	// Attach middlewares at group construction time for clarity.
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)

	// ---- Operating hours ----
	g.POST("/hours", a.CreateHours)
	g.GET("/hours", a.ListHours)
	g.PUT("/hours/:id", a.UpdateHours)
	g.PATCH("/hours/:id", a.UpdateHours)
	g.DELETE("/hours/:id", a.DeleteHours)

	// ---- Tests ----
	g.POST("/tests", a.CreateTest)
	g.GET("/tests", a.ListTests)
	g.GET("/tests/:id", a.GetTest)
	g.PUT("/tests/:id", a.UpdateTest)
	g.PATCH("/tests/:id", a.UpdateTest)
	g.DELETE("/tests/:id", a.DeleteTest)

	// ---- Enrollments ----
	g.POST("/enrollments", a.CreateEnrollment)
	g.GET("/tests/:id/enrollments", a.ListEnrollments)
	g.PATCH("/enrollments/:id/unlocks", a.UpdateEnrollmentUnlocks)
	g.DELETE("/enrollments/:id", a.DeleteEnrollment)

	// ---- Seat map ----
	g.GET("/seats", a.ListSeats)
	g.POST("/seats", a.CreateSeat)
	g.POST("/seats/assign", a.AssignSeat)
	g.POST("/seats/:id/release", a.ReleaseSeat)
}
