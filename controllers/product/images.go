package productcontroller

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/marketbay/marketplace-api/models"
)

const maxProductImages = 10

// imagesByPosition keeps the gallery in the order the seller uploaded it.
func imagesByPosition(tx *gorm.DB) *gorm.DB {
	return tx.Order("position ASC")
}

func uploadDir() string {
	dir := os.Getenv("UPLOAD_DIR")
	if dir == "" {
		dir = "./uploads"
	}
	return filepath.Join(dir, "products")
}

// saveImages writes the uploaded files to disk and returns image records in
// upload order. Filenames are prefixed with a nanosecond timestamp so
// re-uploads never clobber each other.
func saveImages(c *gin.Context, files []*multipart.FileHeader) ([]models.ProductImage, error) {
	dir := uploadDir()
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create upload folder: %w", err)
	}

	images := make([]models.ProductImage, 0, len(files))
	for i, file := range files {
		ext := filepath.Ext(file.Filename)
		base := strings.TrimSuffix(filepath.Base(file.Filename), ext)
		base = strings.ReplaceAll(base, " ", "_")
		filename := fmt.Sprintf("%d_%s%s", time.Now().UnixNano(), base, ext)

		if err := c.SaveUploadedFile(file, filepath.Join(dir, filename)); err != nil {
			return nil, fmt.Errorf("failed to save image: %w", err)
		}

		images = append(images, models.ProductImage{
			URL:      fmt.Sprintf("/uploads/products/%s", filename),
			Position: i,
		})
	}
	return images, nil
}
