package routes

import (
	"github.com/gin-gonic/gin"

	"comment-service/controllers"
	"comment-service/middleware"
)

func CommentRoutes(r *gin.Engine, ctrl *controllers.CommentController) {
	commentGroup := r.Group("/api/comments")

	commentGroup.GET("", middleware.OptionalAuthMiddleware(), ctrl.GetComments)
	commentGroup.GET("/:id", middleware.OptionalAuthMiddleware(), ctrl.GetComment)

	authGroup := commentGroup.Group("")
	authGroup.Use(middleware.AuthMiddleware())
	{
		authGroup.POST("", ctrl.CreateComment)
		authGroup.PUT("/:id", ctrl.UpdateComment)
		authGroup.DELETE("/:id", ctrl.DeleteComment)
		authGroup.POST("/:id/like", ctrl.LikeComment)
		authGroup.POST("/:id/dislike", ctrl.DislikeComment)
		authGroup.POST("/:id/reply", ctrl.ReplyToComment)
	}
}
