package productcontroller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/marketbay/marketplace-api/apperrors"
	"github.com/marketbay/marketplace-api/models"
)

// DELETE /api/products/deleteProduct/:id
//
// DeleteProduct soft-deletes a listing; only the owning seller or an admin
// may do so. Existing order items keep their snapshots regardless.
func DeleteProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if id == "" {
			c.Error(apperrors.Validation("product ID is required"))
			return
		}

		var product models.Product
		if err := db.First(&product, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.Error(apperrors.NotFound("product not found"))
			} else {
				c.Error(apperrors.Internal("failed to fetch product", err))
			}
			return
		}

		if !mayManage(c, product) {
			c.Error(apperrors.Forbidden("you do not own this product"))
			return
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("product_id = ?", product.ID).Delete(&models.ProductImage{}).Error; err != nil {
				return err
			}
			return tx.Delete(&product).Error
		})
		if err != nil {
			c.Error(apperrors.Internal("failed to delete product", err))
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": true, "message": "Product deleted successfully"})
	}
}
