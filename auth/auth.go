package auth

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/marketbay/marketplace-api/apperrors"
	"github.com/marketbay/marketplace-api/models"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role"` // optional; "user" or "seller"
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// publicUser is the profile shape returned by auth endpoints.
func publicUser(u models.User) gin.H {
	return gin.H{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
		"role":  u.Role,
	}
}

// POST /user/signup
func Register(db *gorm.DB, mailer Mailer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(apperrors.Validation("name, email and password are required"))
			return
		}

		var existing models.User
		if err := db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
			c.Error(apperrors.Conflict("user already exists"))
			return
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			c.Error(apperrors.Internal("failed to check existing user", err))
			return
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.Error(apperrors.Internal("failed to hash password", err))
			return
		}

		role := models.RoleUser
		if req.Role == string(models.RoleSeller) {
			role = models.RoleSeller
		}

		// Accounts are live immediately unless the deployment demands a mail
		// round-trip (REQUIRE_ACTIVATION=true).
		requireActivation := os.Getenv("REQUIRE_ACTIVATION") == "true"

		user := models.User{
			ID:        uuid.NewString(),
			Name:      req.Name,
			Email:     req.Email,
			Password:  string(hashed),
			Role:      role,
			Activated: !requireActivation,
			Cart:      models.Cart{},
		}
		user.Cart.UserID = user.ID

		if err := db.Create(&user).Error; err != nil {
			c.Error(apperrors.Conflict("user already exists"))
			return
		}

		token, err := IssueSessionToken(user)
		if err != nil {
			c.Error(apperrors.Internal("failed to issue session token", err))
			return
		}

		if requireActivation {
			activationURL := fmt.Sprintf("%s/user/activation/%s", os.Getenv("PUBLIC_URL"), token)
			body := fmt.Sprintf("Hello %s, please click the link to activate your account: %s", user.Name, activationURL)
			if err := mailer.Send(user.Email, "Activate your account", body); err != nil {
				c.Error(apperrors.Internal("failed to send activation mail", err))
				return
			}
		}

		c.JSON(http.StatusCreated, gin.H{
			"status": true,
			"user":   publicUser(user),
			"token":  token,
		})
	}
}

// POST /user/login
func Login(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(apperrors.Validation("email and password are required"))
			return
		}

		// Unknown email and wrong password answer identically so the
		// endpoint cannot be used to probe for accounts.
		var user models.User
		if err := db.Where("email = ?", req.Email).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.Error(apperrors.Auth("invalid email or password"))
			} else {
				c.Error(apperrors.Internal("failed to fetch user", err))
			}
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			c.Error(apperrors.Auth("invalid email or password"))
			return
		}

		if !user.Activated {
			c.Error(apperrors.Auth("please activate your account first"))
			return
		}

		token, err := IssueSessionToken(user)
		if err != nil {
			c.Error(apperrors.Internal("failed to issue session token", err))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": true,
			"user":   publicUser(user),
			"token":  token,
		})
	}
}

// GET /user/activation/:token
func Activate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := ParseSessionToken(c.Param("token"))
		if err != nil {
			c.Error(apperrors.Auth("invalid or expired activation token"))
			return
		}

		res := db.Model(&models.User{}).Where("id = ?", userID).Update("activated", true)
		if res.Error != nil {
			c.Error(apperrors.Internal("failed to activate account", res.Error))
			return
		}
		if res.RowsAffected == 0 {
			c.Error(apperrors.NotFound("user not found"))
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": true, "message": "Account activated successfully"})
	}
}

// IssueSessionToken signs an HS256 JWT carrying the user's identity. Subject
// is the user id; the role claim drives authorization downstream.
func IssueSessionToken(user models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    string(user.Role),
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

// ParseSessionToken verifies signature and expiry and returns the user id.
func ParseSessionToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid token signing method")
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid or expired token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims")
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return "", errors.New("invalid token claims")
	}
	return userID, nil
}
