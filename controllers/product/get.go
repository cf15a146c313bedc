package productcontroller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/marketbay/marketplace-api/apperrors"
	"github.com/marketbay/marketplace-api/models"
)

// GET /api/products/:id
func GetProductByID(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.Error(apperrors.Validation("invalid product ID"))
			return
		}

		var product models.Product
		if err := db.Preload("Images", imagesByPosition).First(&product, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.Error(apperrors.NotFound("product not found"))
			} else {
				c.Error(apperrors.Internal("failed to retrieve product", err))
			}
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": true, "product": product})
	}
}
