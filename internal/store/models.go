package store

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a marketplace listing. Category holds a classifier class name
// by convention; nothing enforces it.
type Product struct {
	ID           uint            `gorm:"primaryKey"`
	Name         string          `gorm:"size:200;not null"`
	Description  string          `gorm:"type:text"`
	Category     string          `gorm:"size:100;index"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Stock        int             `gorm:"not null;default:0"`
	Manufacturer string          `gorm:"size:100"`
	ImageURL     string          `gorm:"column:image_url;size:500"`
	VendorID     uint            `gorm:"not null;index"`
	Vendor       Vendor          `gorm:"foreignKey:VendorID"`
	CreatedAt    time.Time       `gorm:"autoCreateTime"`
}

func (Product) TableName() string {
	return "products"
}

type Vendor struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"size:200;not null"`
	Email     string    `gorm:"size:200;uniqueIndex"`
	Location  string    `gorm:"size:200"`
	Rating    float64   `gorm:"not null;default:0"`
	Products  []Product `gorm:"foreignKey:VendorID"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Vendor) TableName() string {
	return "vendors"
}

// User and Order are part of the schema but no endpoint reads or writes them.
type User struct {
	ID           uint      `gorm:"primaryKey"`
	Username     string    `gorm:"size:100;uniqueIndex;not null"`
	Email        string    `gorm:"size:200;uniqueIndex;not null"`
	PasswordHash string    `gorm:"size:500"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
)

type Order struct {
	ID         uint            `gorm:"primaryKey"`
	UserID     uint            `gorm:"index"`
	User       User            `gorm:"foreignKey:UserID"`
	ProductID  uint            `gorm:"index"`
	Product    Product         `gorm:"foreignKey:ProductID"`
	Quantity   int             `gorm:"not null;default:1"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(10,2)"`
	Status     OrderStatus     `gorm:"size:50;not null;default:'pending'"`
	CreatedAt  time.Time       `gorm:"autoCreateTime"`
}

func (Order) TableName() string {
	return "orders"
}
