package models

import "time"

type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "processing" // initial state of every order
	OrderStatusShipped    OrderStatus = "shipped"    // out for delivery
	OrderStatusDelivered  OrderStatus = "delivered"  // customer received the items
	OrderStatusCancelled  OrderStatus = "cancelled"  // cancelled by the user or an admin
)

// Terminal reports whether no further transition is allowed out of s.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransition reports whether an order may move from s to next.
// Forward flow is processing -> shipped -> delivered; cancellation is
// allowed from any non-terminal state.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	if s.Terminal() {
		return false
	}
	if next == OrderStatusCancelled {
		return true
	}
	switch s {
	case OrderStatusProcessing:
		return next == OrderStatusShipped
	case OrderStatusShipped:
		return next == OrderStatusDelivered
	}
	return false
}

type Order struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	OrderRef   string      `gorm:"uniqueIndex;not null" json:"order_ref"`
	UserID     string      `gorm:"index;not null" json:"user_id"`
	AddressID  uint        `gorm:"not null" json:"address_id"`
	Items      []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	TotalPrice float64     `json:"total_price"`
	Status     OrderStatus `gorm:"type:VARCHAR(20);default:'processing'" json:"status"`
	CartHash   string      `gorm:"index" json:"-"` // dedupes retried placements
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// OrderItem is an immutable snapshot of a cart line at the moment of
// purchase; later product price or name changes never touch it.
type OrderItem struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	OrderID      uint    `gorm:"index" json:"-"`
	ProductID    uint    `json:"product_id"`
	ProductName  string  `json:"product_name"`
	ProductImage string  `json:"product_image"`
	Price        float64 `json:"price"` // unit price at purchase
	Quantity     int     `json:"quantity"`
}
