package routes

import (
	"landscape_dispatch/internal/controllers"
	"landscape_dispatch/internal/middleware"

	"github.com/gin-gonic/gin"
)

func DriverRoutes(r *gin.Engine, ctl *controllers.DriverController) {
	drivers := r.Group("/drivers")
	drivers.Use(middleware.RequireAuth())
	{
		drivers.GET("", ctl.ListDrivers)
		drivers.GET("/:id", ctl.GetDriver)
	}

	adminDrivers := r.Group("/drivers")
	adminDrivers.Use(middleware.RequireAuthWithRole("admin"))
	{
		adminDrivers.POST("", ctl.CreateDriver)
		adminDrivers.PUT("/:id", ctl.UpdateDriver)
		adminDrivers.DELETE("/:id", ctl.DeleteDriver)
	}
}
