package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	orderControllers "github.com/marketbay/marketplace-api/controllers/order"
	"github.com/marketbay/marketplace-api/middleware"
)

func SetupOrderRoutes(r *gin.Engine, db *gorm.DB) {
	orders := r.Group("/api/orders")
	orders.Use(middleware.ValidateToken)
	{
		// Create a new order from the caller's cart
		orders.POST("", orderControllers.PlaceOrderHandler(db))

		// Caller's order history
		orders.GET("", orderControllers.GetUserOrdersHandler(db))

		// websocket endpoint for real-time order updates
		orders.GET("/ws", orderControllers.OrderWebSocketHandler)

		// Single order (owner or admin)
		orders.GET("/:orderID", orderControllers.GetOrderByIDHandler(db))

		// Cancel (owner or admin); restocks the purchased quantities
		orders.PUT("/:orderID/cancel", orderControllers.CancelOrderHandler(db))
	}
}
