package client

import "time"

// CartItem mirrors the server's cart item wire shape.
type CartItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Image    string  `json:"image"`
	Quantity int     `json:"quantity"`
}

type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Category    string  `json:"category"`
}

type Delivery struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	Zip     string `json:"zip"`
	Phone   string `json:"phone,omitempty"`
}

type Order struct {
	ID        uint       `json:"id"`
	UserID    string     `json:"userId"`
	Items     []CartItem `json:"items"`
	Total     float64    `json:"total"`
	Delivery  Delivery   `json:"delivery"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
}
