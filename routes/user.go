package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	userControllers "github.com/marketbay/marketplace-api/controllers/user"
	"github.com/marketbay/marketplace-api/middleware"
)

// SetupUserRoutes registers the token-protected profile endpoints.
func SetupUserRoutes(r *gin.Engine, db *gorm.DB) {
	userGroup := r.Group("/user")
	userGroup.Use(middleware.ValidateToken)
	{
		userGroup.GET("/me", userControllers.GetProfile(db))
		userGroup.PUT("/me", userControllers.UpdateProfile(db))
		userGroup.POST("/address", userControllers.AddAddress(db))
		userGroup.GET("/addresses", userControllers.GetAddresses(db))
	}
}
