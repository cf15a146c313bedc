package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/marketbay/marketplace-api/auth"
)

// SetupRoutes is the single entry-point that wires up the auth, user,
// product, order and admin route groups.
func SetupRoutes(r *gin.Engine, db *gorm.DB, mailer auth.Mailer) {
	// Public auth routes (no middleware)
	SetupAuthRoutes(r, db, mailer)

	// User profile + cart (JWT-protected)
	SetupUserRoutes(r, db)

	// Product catalog
	SetupProductRoutes(r, db)

	// Cart + order flow
	SetupCartRoutes(r, db)
	SetupOrderRoutes(r, db)

	// Admin routes (JWT + admin role)
	SetupAdminRoutes(r, db)
}
