package auth

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/marketbay/marketplace-api/apperrors"
	"github.com/marketbay/marketplace-api/models"
)

const resetTokenTTL = 15 * time.Minute

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

// POST /user/forgot-password
//
// Always answers 200 so the endpoint cannot confirm whether an address is
// registered. Tokens are persisted with a TTL rather than held in process
// memory, so a restart or a second instance does not strand the user.
func ForgotPassword(db *gorm.DB, mailer Mailer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ForgotPasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(apperrors.Validation("email is required"))
			return
		}

		var user models.User
		err := db.Where("email = ?", req.Email).First(&user).Error
		if err == nil {
			token := models.PasswordResetToken{
				Token:     uuid.NewString(),
				UserID:    user.ID,
				ExpiresAt: time.Now().Add(resetTokenTTL),
			}
			if err := db.Create(&token).Error; err != nil {
				c.Error(apperrors.Internal("failed to create reset token", err))
				return
			}

			resetURL := fmt.Sprintf("%s/reset-password?token=%s", os.Getenv("PUBLIC_URL"), token.Token)
			body := fmt.Sprintf("Hello %s, use the link below to reset your password (valid for 15 minutes): %s", user.Name, resetURL)
			if err := mailer.Send(user.Email, "Reset your password", body); err != nil {
				c.Error(apperrors.Internal("failed to send reset mail", err))
				return
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			c.Error(apperrors.Internal("failed to fetch user", err))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  true,
			"message": "If the email is registered, a reset link has been sent",
		})
	}
}

// POST /user/reset-password
func ResetPassword(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ResetPasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(apperrors.Validation("token and new password are required"))
			return
		}

		var token models.PasswordResetToken
		if err := db.Where("token = ?", req.Token).First(&token).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.Error(apperrors.Auth("invalid or expired reset token"))
			} else {
				c.Error(apperrors.Internal("failed to fetch reset token", err))
			}
			return
		}
		if token.Expired() {
			db.Delete(&token)
			c.Error(apperrors.Auth("invalid or expired reset token"))
			return
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.Error(apperrors.Internal("failed to hash password", err))
			return
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.User{}).Where("id = ?", token.UserID).
				Update("password", string(hashed)).Error; err != nil {
				return err
			}
			// Single use: burn the token with the password change.
			return tx.Delete(&token).Error
		})
		if err != nil {
			c.Error(apperrors.Internal("failed to reset password", err))
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": true, "message": "Password reset successfully"})
	}
}

// StartResetTokenSweeper deletes expired reset tokens every interval so the
// table does not accumulate dead rows. Runs until the process exits.
func StartResetTokenSweeper(db *gorm.DB, interval time.Duration) {
	for {
		time.Sleep(interval)
		res := db.Where("expires_at < ?", time.Now()).Delete(&models.PasswordResetToken{})
		if res.Error != nil {
			log.Printf("❌ Failed to sweep expired reset tokens: %v", res.Error)
		} else if res.RowsAffected > 0 {
			log.Printf("🗑️ Removed %d expired reset tokens", res.RowsAffected)
		}
	}
}
