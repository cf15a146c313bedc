package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	productcontroller "github.com/marketbay/marketplace-api/controllers/product"
	"github.com/marketbay/marketplace-api/middleware"
	"github.com/marketbay/marketplace-api/models"
)

// SetupProductRoutes registers catalog browsing (public) and listing
// management (seller/admin only).
func SetupProductRoutes(r *gin.Engine, db *gorm.DB) {
	products := r.Group("/api/products")
	{
		products.GET("", productcontroller.GetProducts(db))
		products.GET("/:id", productcontroller.GetProductByID(db))
	}

	manage := r.Group("/api/products")
	manage.Use(middleware.ValidateToken)
	{
		manage.GET("/seller/mine", productcontroller.GetSellerProducts(db))

		sellerOnly := manage.Group("")
		sellerOnly.Use(middleware.RequireRole(models.RoleSeller, models.RoleAdmin))
		{
			sellerOnly.POST("/createProduct", productcontroller.CreateProduct(db))
			sellerOnly.PUT("/updateProduct/:id", productcontroller.UpdateProduct(db))
			sellerOnly.DELETE("/deleteProduct/:id", productcontroller.DeleteProduct(db))
		}
	}
}
