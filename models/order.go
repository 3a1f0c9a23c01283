package models

import "time"

type OrderStatus string

const (
	// A pending order is the user's persisted cart; at most one exists per user.
	OrderStatusPending OrderStatus = "pending"
	// A completed order is the immutable record created at checkout.
	OrderStatusCompleted OrderStatus = "completed"
)

// A partial unique index backs the one-pending-order-per-user invariant at
// the schema level, so racing cart creations cannot leave duplicate carts.
type Order struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	UserID    string      `gorm:"not null;index:idx_orders_user_status;index:idx_orders_user_pending,unique,where:status = 'pending'" json:"userId"`
	Items     []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Total     float64     `json:"total"`
	Delivery  Delivery    `gorm:"embedded;embeddedPrefix:delivery_" json:"delivery"`
	Status    OrderStatus `gorm:"type:VARCHAR(20);default:'pending';index:idx_orders_user_status" json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// OrderItem snapshots a product at the time it entered the cart, so later
// catalog edits never rewrite history. Its JSON shape is the cart item:
// {id, name, price, image, quantity}.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey" json:"-"`
	OrderID   uint    `gorm:"index" json:"-"`
	ProductID string  `gorm:"not null" json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Quantity  int     `json:"quantity"`
}

type Delivery struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	Zip     string `json:"zip"`
	Phone   string `json:"phone,omitempty"`
}

// MergeItems collapses duplicate product ids by summing quantities and drops
// entries whose quantity ends up below one. Input order is preserved for the
// first occurrence of each id.
func MergeItems(items []OrderItem) []OrderItem {
	merged := make([]OrderItem, 0, len(items))
	index := make(map[string]int, len(items))
	for _, it := range items {
		if pos, ok := index[it.ProductID]; ok {
			merged[pos].Quantity += it.Quantity
			continue
		}
		index[it.ProductID] = len(merged)
		merged = append(merged, it)
	}
	out := merged[:0]
	for _, it := range merged {
		if it.Quantity >= 1 {
			out = append(out, it)
		}
	}
	return out
}

// ItemsTotal returns the sum of price times quantity over the given items.
func ItemsTotal(items []OrderItem) float64 {
	var total float64
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}
