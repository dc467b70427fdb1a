package routes

import (
	"landscape_dispatch/internal/controllers"
	"landscape_dispatch/internal/middleware"

	"github.com/gin-gonic/gin"
)

func AssignmentRoutes(r *gin.Engine, ctl *controllers.AssignmentController) {
	assignments := r.Group("/assignments")
	assignments.Use(middleware.RequireAuth())
	{
		assignments.GET("", ctl.ListAssignments)
		assignments.GET("/:id", ctl.GetAssignment)
	}

	adminAssignments := r.Group("/assignments")
	adminAssignments.Use(middleware.RequireAuthWithRole("admin"))
	{
		adminAssignments.POST("", ctl.CreateAssignment)
		adminAssignments.PATCH("/:id", ctl.UpdateAssignmentStatus)
	}
}
