package routes

import (
	"civicbot-be/controllers"
	"civicbot-be/middlewares"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// AdminRoutes sets up the dashboard API.
func AdminRoutes(r *gin.Engine, admin *controllers.AdminController, jwtSecret string) {
	group := r.Group("/api/admin")
	group.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "PUT", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Authorization"},
	}))

	group.POST("/login", admin.Login)
	{
		authed := group.Group("", middlewares.AuthMiddleware(jwtSecret))
		authed.GET("/issues", admin.ListIssues)
		authed.GET("/stats", admin.GetStats)
		authed.PUT("/issues/:issueId", admin.UpdateIssue)
	}
}
