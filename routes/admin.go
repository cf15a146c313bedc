package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	cartControllers "github.com/marketbay/marketplace-api/controllers/cart"
	orderControllers "github.com/marketbay/marketplace-api/controllers/order"
	productcontroller "github.com/marketbay/marketplace-api/controllers/product"
	userControllers "github.com/marketbay/marketplace-api/controllers/user"
	"github.com/marketbay/marketplace-api/middleware"
	"github.com/marketbay/marketplace-api/models"
)

// SetupAdminRoutes registers all "/admin/*" endpoints. Requires a token with
// the admin role.
func SetupAdminRoutes(r *gin.Engine, db *gorm.DB) {
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.ValidateToken, middleware.RequireRole(models.RoleAdmin))
	{
		// User management
		adminGroup.GET("/users", userControllers.GetAllUsers(db))
		adminGroup.GET("/user-cart/:user_id", cartControllers.GetUserCartAdmin(db))

		// Catalog export
		adminGroup.GET("/products/export-excel", productcontroller.ExportProductsToExcel(db))

		// Order management
		adminGroup.GET("/orders", orderControllers.GetAllOrdersHandler(db))
		adminGroup.PUT("/orders/:orderID/status", orderControllers.UpdateOrderStatusHandler(db))
	}
}
