package productcontroller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/marketbay/marketplace-api/apperrors"
	"github.com/marketbay/marketplace-api/models"
)

// POST /api/products/createProduct
//
// CreateProduct creates a listing owned by the calling seller. multipart
// form: name, description, category, tags, price, stock, images[].
func CreateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sellerID := c.GetString("user_id")

		name := c.PostForm("name")
		description := c.PostForm("description")
		category := c.PostForm("category")
		tags := c.PostForm("tags")
		priceStr := c.PostForm("price")
		stockStr := c.PostForm("stock")
		if name == "" || description == "" || category == "" || tags == "" || priceStr == "" || stockStr == "" {
			c.Error(apperrors.Validation("name, description, category, tags, price and stock are required"))
			return
		}

		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil || price < 0 {
			c.Error(apperrors.Validation("invalid price"))
			return
		}
		stock, err := strconv.Atoi(stockStr)
		if err != nil || stock < 0 {
			c.Error(apperrors.Validation("invalid stock"))
			return
		}

		form, err := c.MultipartForm()
		if err != nil {
			c.Error(apperrors.Validation("at least one image is required"))
			return
		}
		files := form.File["images"]
		if len(files) == 0 {
			c.Error(apperrors.Validation("at least one image is required"))
			return
		}
		if len(files) > maxProductImages {
			files = files[:maxProductImages]
		}

		images, err := saveImages(c, files)
		if err != nil {
			c.Error(apperrors.Internal("failed to store product images", err))
			return
		}

		product := models.Product{
			SellerID:    sellerID,
			Name:        name,
			Description: description,
			Category:    category,
			Tags:        tags,
			Price:       price,
			Stock:       stock,
			Images:      images,
		}

		if err := db.Create(&product).Error; err != nil {
			c.Error(apperrors.Internal("failed to create product", err))
			return
		}

		c.JSON(http.StatusCreated, gin.H{"status": true, "product": product})
	}
}
