package cartControllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/marketbay/marketplace-api/apperrors"
	"github.com/marketbay/marketplace-api/models"
)

type CartItemInput struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// CartLine pairs a stored cart item with the live product so clients always
// see current prices; nothing is frozen until order placement.
type CartLine struct {
	ProductID uint           `json:"product_id"`
	Quantity  int            `json:"quantity"`
	Product   models.Product `json:"product"`
	LineTotal float64        `json:"line_total"`
}

type CartSnapshot struct {
	Items      []CartLine `json:"items"`
	TotalPrice float64    `json:"total_price"`
}

// ensureCart returns the user's cart, creating it if signup predates the
// one-cart-per-user migration.
func ensureCart(db *gorm.DB, userID string) (models.Cart, error) {
	var cart models.Cart
	err := db.Where("user_id = ?", userID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = models.Cart{UserID: userID}
		err = db.Create(&cart).Error
	}
	return cart, err
}

// Snapshot rebuilds the cart view with live product data. Lines whose
// product has since been removed are skipped rather than priced at zero.
func Snapshot(db *gorm.DB, userID string) (CartSnapshot, error) {
	snapshot := CartSnapshot{Items: []CartLine{}}

	cart, err := ensureCart(db, userID)
	if err != nil {
		return snapshot, err
	}

	var items []models.CartItem
	if err := db.Where("cart_id = ?", cart.CartID).Order("added_at ASC").Find(&items).Error; err != nil {
		return snapshot, err
	}

	for _, item := range items {
		var product models.Product
		err := db.Preload("Images", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position ASC")
		}).First(&product, item.ProductID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return snapshot, err
		}

		line := CartLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Product:   product,
			LineTotal: product.Price * float64(item.Quantity),
		}
		snapshot.Items = append(snapshot.Items, line)
		snapshot.TotalPrice += line.LineTotal
	}

	return snapshot, nil
}

// upsertItem applies the requested quantity to the user's cart line for the
// product. With increment set the quantity adds to an existing line ("add
// more"); otherwise it replaces it ("set quantity"). Either way the
// resulting quantity is validated against current stock. Stock is checked
// here, never reserved.
func upsertItem(db *gorm.DB, userID string, input CartItemInput, increment bool) error {
	var product models.Product
	if err := db.First(&product, input.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("product not found")
		}
		return apperrors.Internal("failed to validate product", err)
	}

	cart, err := ensureCart(db, userID)
	if err != nil {
		return apperrors.Internal("failed to fetch user cart", err)
	}

	var item models.CartItem
	err = db.Where("cart_id = ? AND product_id = ?", cart.CartID, input.ProductID).First(&item).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if input.Quantity > product.Stock {
			return apperrors.Conflict("insufficient stock for " + product.Name)
		}
		item = models.CartItem{
			CartID:    cart.CartID,
			ProductID: product.ID,
			Quantity:  input.Quantity,
			AddedAt:   time.Now(),
		}
		if err := db.Create(&item).Error; err != nil {
			return apperrors.Internal("failed to add item to cart", err)
		}
	case err != nil:
		return apperrors.Internal("failed to fetch cart item", err)
	default:
		quantity := input.Quantity
		if increment {
			quantity += item.Quantity
		}
		if quantity > product.Stock {
			return apperrors.Conflict("insufficient stock for " + product.Name)
		}
		item.Quantity = quantity
		item.AddedAt = time.Now()
		if err := db.Save(&item).Error; err != nil {
			return apperrors.Internal("failed to update cart item", err)
		}
	}

	return nil
}

func respondSnapshot(c *gin.Context, db *gorm.DB, userID string) {
	snapshot, err := Snapshot(db, userID)
	if err != nil {
		c.Error(apperrors.Internal("failed to fetch cart", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      true,
		"cart":        snapshot,
		"total_price": snapshot.TotalPrice,
	})
}

// POST /api/cart/add adds quantity on top of any existing line.
func AddCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		var input CartItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.Error(apperrors.Validation("product_id and a positive quantity are required"))
			return
		}

		if err := upsertItem(db, userID, input, true); err != nil {
			c.Error(err)
			return
		}
		respondSnapshot(c, db, userID)
	}
}

// PUT /api/cart/item sets the line's quantity, replacing any previous value.
func SetCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		var input CartItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.Error(apperrors.Validation("product_id and a positive quantity are required"))
			return
		}

		if err := upsertItem(db, userID, input, false); err != nil {
			c.Error(err)
			return
		}
		respondSnapshot(c, db, userID)
	}
}

// DELETE /api/cart/:product_id is idempotent; removing an absent line still
// returns the (unchanged) cart.
func RemoveCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		productID := c.Param("product_id")

		cart, err := ensureCart(db, userID)
		if err != nil {
			c.Error(apperrors.Internal("failed to fetch user cart", err))
			return
		}

		if err := db.Where("cart_id = ? AND product_id = ?", cart.CartID, productID).
			Delete(&models.CartItem{}).Error; err != nil {
			c.Error(apperrors.Internal("failed to delete cart item", err))
			return
		}

		respondSnapshot(c, db, userID)
	}
}

// GET /api/cart
func GetCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		respondSnapshot(c, db, c.GetString("user_id"))
	}
}

// GET /admin/user-cart/:user_id
func GetUserCartAdmin(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("user_id")
		if userID == "" {
			c.Error(apperrors.Validation("user_id is required"))
			return
		}
		respondSnapshot(c, db, userID)
	}
}
