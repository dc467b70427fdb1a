package routes

import (
	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"

	"landscape_dispatch/internal/controllers"
)

// Controllers bundles every handler the router mounts.
type Controllers struct {
	Auth       *controllers.AuthController
	Driver     *controllers.DriverController
	Vehicle    *controllers.VehicleController
	Order      *controllers.OrderController
	Assignment *controllers.AssignmentController
	Report     *controllers.ReportController
}

func SetupRouter(ctl Controllers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// Request logging middleware
	r.Use(ginlog.SetLogger())

	AuthRoutes(r, ctl.Auth)
	DriverRoutes(r, ctl.Driver)
	VehicleRoutes(r, ctl.Vehicle)
	OrderRoutes(r, ctl.Order)
	AssignmentRoutes(r, ctl.Assignment)
	ReportRoutes(r, ctl.Report)

	return r
}
