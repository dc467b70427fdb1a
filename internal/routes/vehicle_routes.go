package routes

import (
	"landscape_dispatch/internal/controllers"
	"landscape_dispatch/internal/middleware"

	"github.com/gin-gonic/gin"
)

func VehicleRoutes(r *gin.Engine, ctl *controllers.VehicleController) {
	vehicles := r.Group("/vehicles")
	vehicles.Use(middleware.RequireAuth())
	{
		vehicles.GET("", ctl.ListVehicles)
		vehicles.GET("/:id", ctl.GetVehicle)
	}

	adminVehicles := r.Group("/vehicles")
	adminVehicles.Use(middleware.RequireAuthWithRole("admin"))
	{
		adminVehicles.POST("", ctl.CreateVehicle)
		adminVehicles.PUT("/:id", ctl.UpdateVehicle)
		adminVehicles.DELETE("/:id", ctl.DeleteVehicle)
	}
}
