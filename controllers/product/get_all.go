package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/marketbay/marketplace-api/apperrors"
	"github.com/marketbay/marketplace-api/models"
)

// GET /api/products
//
// GetProducts lists the catalog, optionally filtered by ?category=.
func GetProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Preload("Images", imagesByPosition).Order("created_at DESC")
		if category := c.Query("category"); category != "" {
			query = query.Where("category = ?", category)
		}

		var products []models.Product
		if err := query.Find(&products).Error; err != nil {
			c.Error(apperrors.Internal("failed to fetch products", err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": true, "products": products})
	}
}

// GET /api/products/seller/mine
//
// GetSellerProducts lists the calling seller's own products.
func GetSellerProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sellerID := c.GetString("user_id")

		var products []models.Product
		if err := db.Preload("Images", imagesByPosition).
			Where("seller_id = ?", sellerID).
			Order("created_at DESC").
			Find(&products).Error; err != nil {
			c.Error(apperrors.Internal("failed to fetch products", err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": true, "products": products})
	}
}
