package routes

import (
	"github.com/gin-gonic/gin"

	"comment-service/controllers"
	"comment-service/middleware"
)

func AuthRoutes(r *gin.Engine, ctrl *controllers.AuthController) {
	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/register", ctrl.RegisterUser)
		authGroup.POST("/login", ctrl.LoginUser)
		authGroup.GET("/me", middleware.AuthMiddleware(), ctrl.GetProfile)
	}
}
