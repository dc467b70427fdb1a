package routes

import (
	"landscape_dispatch/internal/controllers"
	"landscape_dispatch/internal/middleware"

	"github.com/gin-gonic/gin"
)

func ReportRoutes(r *gin.Engine, ctl *controllers.ReportController) {
	reports := r.Group("/reports")
	reports.Use(middleware.RequireAuth())
	{
		reports.GET("/timeline", ctl.Timeline)
		reports.GET("/by-driver", ctl.ByDriver)
		reports.GET("/by-status", ctl.ByStatus)
		reports.GET("/export.csv", ctl.ExportCSV)
	}
}
