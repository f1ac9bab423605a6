package models

import "time"

type Order struct {
	ID        string      `gorm:"primaryKey;size:36"                          json:"order_id"`
	Username  string      `gorm:"index;not null"                              json:"user"`
	Total     float64     `gorm:"not null"                                    json:"total"`
	Status    string      `gorm:"not null"                                    json:"status"`
	CreatedAt time.Time   `gorm:"not null"                                    json:"created_at"`
	Items     []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

type OrderItem struct {
	ID         uint    `gorm:"primaryKey"                 json:"-"`
	OrderID    string  `gorm:"index;size:36;not null"     json:"-"`
	ProductID  int64   `gorm:"not null"                   json:"product_id"`
	Name       string  `gorm:"not null"                   json:"name"`
	Quantity   int     `gorm:"default:1;check:quantity>0" json:"quantity"`
	TotalPrice float64 `gorm:"not null"                   json:"total_price"`
}

const OrderStatusPaid = "paid"
