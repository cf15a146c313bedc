package orderControllers

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketbay/marketplace-api/apperrors"
	"github.com/marketbay/marketplace-api/models"
)

// idempotencyWindow is how long a retried placeOrder with an identical cart
// is answered with the already-created order instead of a second charge.
const idempotencyWindow = 2 * time.Minute

// -------- Request Structs --------

type PlaceOrderRequest struct {
	AddressID uint `json:"address_id" binding:"required"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// -------- Helpers --------

func mapOrderStatus(status string) (models.OrderStatus, error) {
	switch models.OrderStatus(status) {
	case models.OrderStatusProcessing:
		return models.OrderStatusProcessing, nil
	case models.OrderStatusShipped:
		return models.OrderStatusShipped, nil
	case models.OrderStatusDelivered:
		return models.OrderStatusDelivered, nil
	case models.OrderStatusCancelled:
		return models.OrderStatusCancelled, nil
	default:
		return "", errors.New("invalid order status")
	}
}

// cartHash fingerprints the cart contents so retried placements within the
// idempotency window can be matched.
func cartHash(items []models.CartItem) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("%d:%d", item.ProductID, item.Quantity))
	}
	sort.Strings(lines)

	h := sha256.New()
	for _, line := range lines {
		h.Write([]byte(line))
		h.Write([]byte(";"))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func mayAccess(c *gin.Context, order models.Order) bool {
	return order.UserID == c.GetString("user_id") || c.GetString("role") == string(models.RoleAdmin)
}

// -------- Core Logic --------

// PlaceOrder converts the user's cart into an order. Stock is taken with a
// conditional decrement (stock = stock - n only where stock >= n), so two
// racing orders can never oversell: the losing update matches zero rows and
// the whole transaction rolls back with nothing partially visible.
func PlaceOrder(db *gorm.DB, userID string, addressID uint) (*models.Order, error) {
	var cart models.Cart
	if err := db.Preload("Items").Where("user_id = ?", userID).First(&cart).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Internal("failed to fetch cart", err)
	}

	if len(cart.Items) == 0 {
		return nil, apperrors.Validation("cart is empty")
	}

	var address models.Address
	if err := db.Where("id = ? AND user_id = ?", addressID, userID).First(&address).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("address not found")
		}
		return nil, apperrors.Internal("failed to fetch address", err)
	}

	// Absorb client retries: an identical cart that just became an order is
	// that order, not a second purchase. Covers the case where the first
	// attempt committed but its cart-clear raced with the retry.
	hash := cartHash(cart.Items)
	var existing models.Order
	err := db.Preload("Items").
		Where("user_id = ? AND cart_hash = ? AND status <> ? AND created_at > ?",
			userID, hash, models.OrderStatusCancelled, time.Now().Add(-idempotencyWindow)).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Internal("failed to check for duplicate order", err)
	}

	order := models.Order{
		OrderRef:  uuid.NewString(),
		UserID:    userID,
		AddressID: addressID,
		Status:    models.OrderStatusProcessing,
		CartHash:  hash,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		for _, item := range cart.Items {
			// Single atomic check-and-decrement; never read-then-write.
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", item.ProductID, item.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity))
			if res.Error != nil {
				return apperrors.Internal("failed to update stock", res.Error)
			}
			if res.RowsAffected == 0 {
				// Re-fetch to tell a vanished product from a short one.
				var p models.Product
				if ferr := tx.First(&p, item.ProductID).Error; ferr != nil {
					if errors.Is(ferr, gorm.ErrRecordNotFound) {
						return apperrors.NotFound("product no longer exists")
					}
					return apperrors.Internal("failed to fetch product", ferr)
				}
				return apperrors.Conflict("insufficient stock for " + p.Name)
			}

			var product models.Product
			if err := tx.Preload("Images", func(q *gorm.DB) *gorm.DB {
				return q.Order("position ASC")
			}).First(&product, item.ProductID).Error; err != nil {
				return apperrors.Internal("failed to fetch product", err)
			}

			// Price snapshot: later catalog edits never touch this order.
			order.Items = append(order.Items, models.OrderItem{
				ProductID:    product.ID,
				ProductName:  product.Name,
				ProductImage: product.FirstImageURL(),
				Price:        product.Price,
				Quantity:     item.Quantity,
			})
			order.TotalPrice += product.Price * float64(item.Quantity)
		}

		if err := tx.Create(&order).Error; err != nil {
			return apperrors.Internal("failed to create order", err)
		}

		// Cart-clear commits with the order; a rollback restores both.
		if err := tx.Where("cart_id = ?", cart.CartID).Delete(&models.CartItem{}).Error; err != nil {
			return apperrors.Internal("failed to clear cart", err)
		}

		return nil
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperrors.Internal("failed to place order", err)
	}

	broadcastOrderPlaced(order)
	return &order, nil
}

// CancelOrder moves a non-terminal order to cancelled and returns its stock.
// Restock uses the same atomic increment expression the decrement path uses.
func CancelOrder(db *gorm.DB, orderID, requesterID string, isAdmin bool) error {
	var order models.Order
	if err := db.Preload("Items").Where("id = ?", orderID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("order not found")
		}
		return apperrors.Internal("failed to fetch order", err)
	}

	if order.UserID != requesterID && !isAdmin {
		return apperrors.Forbidden("you are not authorized to cancel this order")
	}
	if order.Status == models.OrderStatusCancelled {
		return apperrors.Conflict("order is already cancelled")
	}
	if !order.Status.CanTransition(models.OrderStatusCancelled) {
		return apperrors.Conflict("a delivered order cannot be cancelled")
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		// Guard against a racing cancel: only flip from the status we read.
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, order.Status).
			Update("status", models.OrderStatusCancelled)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.Conflict("order is already cancelled")
		}

		for _, item := range order.Items {
			if err := tx.Model(&models.Product{}).
				Where("id = ?", item.ProductID).
				UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return apperrors.Internal("failed to cancel order", err)
	}
	return nil
}

// -------- Handlers --------

// POST /api/orders
func PlaceOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PlaceOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(apperrors.Validation("address_id is required"))
			return
		}

		order, err := PlaceOrder(db, c.GetString("user_id"), req.AddressID)
		if err != nil {
			c.Error(err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"status":    true,
			"message":   "Order placed successfully",
			"order_id":  order.ID,
			"order_ref": order.OrderRef,
		})
	}
}

// GET /api/orders/:orderID
func GetOrderByIDHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("orderID")

		// Numeric path params are row IDs, anything else is an order ref.
		query := db.Preload("Items")
		if _, err := strconv.ParseUint(id, 10, 64); err == nil {
			query = query.Where("id = ?", id)
		} else {
			query = query.Where("order_ref = ?", id)
		}

		var order models.Order
		if err := query.First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.Error(apperrors.NotFound("order not found"))
			} else {
				c.Error(apperrors.Internal("failed to fetch order", err))
			}
			return
		}

		if !mayAccess(c, order) {
			c.Error(apperrors.Forbidden("you are not authorized to view this order"))
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": true, "order": order})
	}
}

// GET /api/orders
func GetUserOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var orders []models.Order
		if err := db.
			Where("user_id = ?", c.GetString("user_id")).
			Preload("Items").
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			c.Error(apperrors.Internal("failed to fetch orders", err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": true, "orders": orders})
	}
}

// GET /admin/orders
func GetAllOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var orders []models.Order
		if err := db.
			Preload("Items").
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			c.Error(apperrors.Internal("failed to fetch orders", err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": true, "orders": orders})
	}
}

// PUT /api/orders/:orderID/cancel
func CancelOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		isAdmin := c.GetString("role") == string(models.RoleAdmin)
		if err := CancelOrder(db, c.Param("orderID"), c.GetString("user_id"), isAdmin); err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": true, "message": "Order cancelled successfully"})
	}
}

// PUT /admin/orders/:orderID/status
//
// Forward transitions only; cancellation goes through the cancel endpoint so
// stock is returned.
func UpdateOrderStatusHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(apperrors.Validation("status is required"))
			return
		}
		newStatus, err := mapOrderStatus(req.Status)
		if err != nil {
			c.Error(apperrors.Validation(err.Error()))
			return
		}
		if newStatus == models.OrderStatusCancelled {
			c.Error(apperrors.Validation("use the cancel endpoint to cancel an order"))
			return
		}

		var order models.Order
		if err := db.Where("id = ?", c.Param("orderID")).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.Error(apperrors.NotFound("order not found"))
			} else {
				c.Error(apperrors.Internal("failed to fetch order", err))
			}
			return
		}

		if !order.Status.CanTransition(newStatus) {
			c.Error(apperrors.Conflict(fmt.Sprintf("cannot move order from %s to %s", order.Status, newStatus)))
			return
		}

		if err := db.Model(&order).Update("status", newStatus).Error; err != nil {
			c.Error(apperrors.Internal("failed to update order status", err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": true, "message": "Order status updated successfully"})
	}
}
