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

// mayManage compares the stored owner against the token identity, never a
// client-supplied value.
func mayManage(c *gin.Context, product models.Product) bool {
	return product.SellerID == c.GetString("user_id") || c.GetString("role") == string(models.RoleAdmin)
}

// PUT /api/products/updateProduct/:id
//
// UpdateProduct applies a partial update. Accepts the same form fields as
// CreateProduct; new images replace the whole gallery, keeping upload order.
func UpdateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.Error(apperrors.Validation("invalid product ID"))
			return
		}

		var product models.Product
		if err := db.Preload("Images", imagesByPosition).First(&product, id).Error; err != nil {
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

		parseFloat := func(val string) *float64 {
			if val == "" {
				return nil
			}
			if f, err := strconv.ParseFloat(val, 64); err == nil && f >= 0 {
				return &f
			}
			return nil
		}
		parseInt := func(val string) *int {
			if val == "" {
				return nil
			}
			if i, err := strconv.Atoi(val); err == nil && i >= 0 {
				return &i
			}
			return nil
		}

		if v := c.PostForm("name"); v != "" {
			product.Name = v
		}
		if v := c.PostForm("description"); v != "" {
			product.Description = v
		}
		if v := c.PostForm("category"); v != "" {
			product.Category = v
		}
		if v := c.PostForm("tags"); v != "" {
			product.Tags = v
		}
		if v := parseFloat(c.PostForm("price")); v != nil {
			product.Price = *v
		}
		if v := parseInt(c.PostForm("stock")); v != nil {
			product.Stock = *v
		}

		// Optional gallery replacement.
		var newImages []models.ProductImage
		if form, err := c.MultipartForm(); err == nil {
			files := form.File["images"]
			if len(files) > maxProductImages {
				files = files[:maxProductImages]
			}
			if len(files) > 0 {
				newImages, err = saveImages(c, files)
				if err != nil {
					c.Error(apperrors.Internal("failed to store product images", err))
					return
				}
			}
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if len(newImages) > 0 {
				if err := tx.Where("product_id = ?", product.ID).Delete(&models.ProductImage{}).Error; err != nil {
					return err
				}
				for i := range newImages {
					newImages[i].ProductID = product.ID
				}
				product.Images = newImages
			}
			return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(&product).Error
		})
		if err != nil {
			c.Error(apperrors.Internal("failed to update product", err))
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": true, "product": product})
	}
}
