package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/marketbay/marketplace-api/auth"
)

// SetupAuthRoutes registers the public credential endpoints.
func SetupAuthRoutes(r *gin.Engine, db *gorm.DB, mailer auth.Mailer) {
	userGroup := r.Group("/user")
	{
		userGroup.POST("/signup", auth.Register(db, mailer))
		userGroup.POST("/login", auth.Login(db))
		userGroup.GET("/activation/:token", auth.Activate(db))
		userGroup.POST("/forgot-password", auth.ForgotPassword(db, mailer))
		userGroup.POST("/reset-password", auth.ResetPassword(db))
	}
}
