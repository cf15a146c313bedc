package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	cartControllers "github.com/marketbay/marketplace-api/controllers/cart"
	"github.com/marketbay/marketplace-api/middleware"
)

// SetupCartRoutes registers the shopping cart endpoints. Adding increments
// an existing line; setting replaces its quantity.
func SetupCartRoutes(r *gin.Engine, db *gorm.DB) {
	cart := r.Group("/api/cart")
	cart.Use(middleware.ValidateToken)
	{
		cart.GET("", cartControllers.GetCart(db))
		cart.POST("/add", cartControllers.AddCartItem(db))
		cart.PUT("/item", cartControllers.SetCartItem(db))
		cart.DELETE("/:product_id", cartControllers.RemoveCartItem(db))
	}
}
