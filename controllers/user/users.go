package userControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/marketbay/marketplace-api/apperrors"
	"github.com/marketbay/marketplace-api/models"
)

type UpdateUserInput struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

type AddressInput struct {
	Street  string `json:"street" binding:"required"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state" binding:"required"`
	ZipCode string `json:"zip_code" binding:"required"`
	Country string `json:"country" binding:"required"`
}

// GET /user/me
func GetProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		var user models.User
		if err := db.Preload("Addresses").First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.Error(apperrors.NotFound("user not found"))
			} else {
				c.Error(apperrors.Internal("failed to fetch user", err))
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": true, "user": user})
	}
}

// PUT /user/me
func UpdateProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			c.Error(apperrors.NotFound("user not found"))
			return
		}

		var input UpdateUserInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.Error(apperrors.Validation("invalid input"))
			return
		}

		updates := make(map[string]interface{})
		if input.Name != nil {
			updates["name"] = *input.Name
		}
		if input.Email != nil {
			updates["email"] = *input.Email
		}

		if len(updates) > 0 {
			if err := db.Model(&user).Updates(updates).Error; err != nil {
				// The unique index on email is the arbiter here.
				c.Error(apperrors.Conflict("email already in use"))
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{"status": true, "user": user})
	}
}

// POST /user/address
func AddAddress(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		var input AddressInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.Error(apperrors.Validation("all address fields are required"))
			return
		}

		address := models.Address{
			UserID:  userID,
			Street:  input.Street,
			City:    input.City,
			State:   input.State,
			ZipCode: input.ZipCode,
			Country: input.Country,
		}
		if err := db.Create(&address).Error; err != nil {
			c.Error(apperrors.Internal("failed to add address", err))
			return
		}

		c.JSON(http.StatusCreated, gin.H{"status": true, "address": address})
	}
}

// GET /user/addresses
func GetAddresses(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		var addresses []models.Address
		if err := db.Where("user_id = ?", userID).Find(&addresses).Error; err != nil {
			c.Error(apperrors.Internal("failed to fetch addresses", err))
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": true, "addresses": addresses})
	}
}

// GET /admin/users
func GetAllUsers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var users []models.User
		if err := db.
			Select("id", "email", "name", "role", "activated", "created_at"). // Select only public fields
			Order("created_at desc").
			Find(&users).Error; err != nil {
			c.Error(apperrors.Internal("failed to fetch users", err))
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": true, "users": users})
	}
}
