// internal/models/order.go
package models

// Orders live in the external order/payment service; this service only ever
// reads them. Not persisted locally, hence no gorm.Model.

const (
	PaymentPaid   = "paid"
	PaymentUnpaid = "unpaid"
)

type OrderItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type Order struct {
	ID              string      `json:"id"`
	CustomerRef     string      `json:"customer_ref"`
	Items           []OrderItem `json:"items"`
	TotalAmount     float64     `json:"total_amount"`
	PaymentStatus   string      `json:"payment_status"` // "paid" or "unpaid"
	DeliveryAddress string      `json:"delivery_address"`
}
