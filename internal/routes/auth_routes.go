package routes

import (
	"landscape_dispatch/internal/controllers"

	"github.com/gin-gonic/gin"
)

func AuthRoutes(r *gin.Engine, ctl *controllers.AuthController) {
	auth := r.Group("/auth")
	{
		auth.POST("/signup", ctl.SignupUser)
		auth.POST("/login", ctl.LoginUser)
	}
}
