package models

// OrderStatus represents the fulfilment state of an order
type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"
	OrderStatusPicked  OrderStatus = "picked"
)

// IsValid reports whether the status is one the backend accepts
func (s OrderStatus) IsValid() bool {
	return s == OrderStatusPending || s == OrderStatusPicked
}

// OrderItem represents an item within an order
type OrderItem struct {
	ID        int64          `json:"id,omitempty"`
	ListingID int64          `json:"listing_id"`
	Quantity  NumericString  `json:"quantity"`
	Price     *NumericString `json:"price,omitempty"`
}

// Order represents a buyer's purchase of one or more listing items
type Order struct {
	ID          int64         `json:"order_id"`
	UserID      int64         `json:"user"`
	Items       []OrderItem   `json:"items"`
	TotalAmount NumericString `json:"total_amount"`
	Status      OrderStatus   `json:"order_status"`
	OrderDate   FlexibleTime  `json:"order_date"`
	CreatedAt   FlexibleTime  `json:"created_at"`
	UpdatedAt   FlexibleTime  `json:"updated_at"`
}

// ItemWeight returns the summed item quantity for the order.
// Orders whose items did not decode as an array contribute 0.
func (o *Order) ItemWeight() float64 {
	if o.Items == nil {
		return 0
	}
	total := 0.0
	for _, item := range o.Items {
		total += item.Quantity.Value
	}
	return total
}
