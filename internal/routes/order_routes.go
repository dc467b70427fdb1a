package routes

import (
	"landscape_dispatch/internal/controllers"
	"landscape_dispatch/internal/middleware"

	"github.com/gin-gonic/gin"
)

func OrderRoutes(r *gin.Engine, ctl *controllers.OrderController) {
	orders := r.Group("/orders")
	orders.Use(middleware.RequireAuth())
	{
		orders.GET("/assignable", ctl.ListAssignable)
		orders.GET("/pending", ctl.ListPending)
	}
}
