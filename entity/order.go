package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderStatus enumerates the delivery lifecycle of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"    // created, awaiting dispatch/acceptance
	OrderProcessing OrderStatus = "processing" // driver assigned, heading to pickup
	OrderShipped    OrderStatus = "shipped"    // pickup OTP verified, en route to customer
	OrderDelivered  OrderStatus = "delivered"  // terminal
	OrderCancelled  OrderStatus = "cancelled"  // terminal, reachable from any non-terminal state
)

// Terminal reports whether no further transition is permitted from s.
func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// PaymentStatus tells settlement whether the driver collected cash on delivery.
type PaymentStatus string

const (
	PaymentPaid   PaymentStatus = "paid"
	PaymentUnpaid PaymentStatus = "unpaid"
)

// FloatingCashStatus tracks COD money held by the driver for an order.
type FloatingCashStatus string

const (
	FloatingCashNone    FloatingCashStatus = "none"
	FloatingCashPending FloatingCashStatus = "pending"
	FloatingCashCleared FloatingCashStatus = "cleared"
)

// EarningStatus tracks whether the driver payout for an order has been credited.
type EarningStatus string

const (
	EarningUnpaid EarningStatus = "unpaid"
	EarningPaid   EarningStatus = "paid"
)

// Order captures a marketplace delivery request by a customer. An order may
// span several vendors; each vendor slice carries its own item list and status.
type Order struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	CustomerID uuid.UUID `json:"customer_id" gorm:"type:uuid;index;not null"`

	VendorOrders []VendorOrder `json:"vendor_orders" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	ShippingAddress string   `json:"shipping_address" gorm:"type:text;not null"`
	ShippingLat     *float64 `json:"shipping_lat,omitempty" gorm:"type:double precision"`
	ShippingLng     *float64 `json:"shipping_lng,omitempty" gorm:"type:double precision"`

	PaymentStatus PaymentStatus `json:"payment_status" gorm:"type:text;index;not null;default:'unpaid'"`
	DeliveryFee   float64       `json:"delivery_fee" gorm:"type:double precision;not null;default:0"`

	PickupOTP   string `json:"-" gorm:"type:text"`
	DeliveryOTP string `json:"-" gorm:"type:text"`

	DriverID *uuid.UUID `json:"driver_id,omitempty" gorm:"type:uuid;index;default:null"`

	// Driver-fee breakdown computed at acceptance.
	PickupDistanceKm float64 `json:"pickup_distance_km" gorm:"type:double precision;not null;default:0"`
	DropDistanceKm   float64 `json:"drop_distance_km" gorm:"type:double precision;not null;default:0"`
	TotalDistanceKm  float64 `json:"total_distance_km" gorm:"type:double precision;not null;default:0"`
	DriverFee        float64 `json:"driver_fee" gorm:"type:double precision;not null;default:0"`

	Status             OrderStatus        `json:"status" gorm:"type:text;index;not null;default:'pending'"`
	EstimatedArrivalAt *time.Time         `json:"estimated_arrival_at,omitempty"`
	DeliveredAt        *time.Time         `json:"delivered_at,omitempty" gorm:"index"`
	DeliveredInMin     int                `json:"delivered_in_min" gorm:"default:0"`
	FloatingCashAmount float64            `json:"floating_cash_amount" gorm:"type:double precision;not null;default:0"`
	FloatingCashStatus FloatingCashStatus `json:"floating_cash_status" gorm:"type:text;index;not null;default:'none'"`
	DriverEarning      float64            `json:"driver_earning" gorm:"type:double precision;not null;default:0"`
	EarningStatus      EarningStatus      `json:"earning_status" gorm:"type:text;index;not null;default:'unpaid'"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// VendorOrder is one vendor's slice of a customer order.
type VendorOrder struct {
	ID       uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	OrderID  uuid.UUID   `json:"order_id" gorm:"type:uuid;index;not null"`
	VendorID uuid.UUID   `json:"vendor_id" gorm:"type:uuid;index;not null"`
	Items    []OrderItem `json:"items" gorm:"foreignKey:VendorOrderID;constraint:OnDelete:CASCADE"`
	Status   OrderStatus `json:"status" gorm:"type:text;index;not null;default:'pending'"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (vo *VendorOrder) BeforeCreate(tx *gorm.DB) error {
	if vo.ID == uuid.Nil {
		vo.ID = uuid.New()
	}
	return nil
}

// OrderItem is a single catalog line within a vendor order.
type OrderItem struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	VendorOrderID uuid.UUID `json:"vendor_order_id" gorm:"type:uuid;index;not null"`
	Name          string    `json:"name" gorm:"type:text;not null"`
	ImageURL      string    `json:"image_url,omitempty" gorm:"type:text"`
	Quantity      int       `json:"quantity" gorm:"not null;default:1"`
	UnitPrice     float64   `json:"unit_price" gorm:"type:double precision;not null;default:0"`
	Total         float64   `json:"total" gorm:"type:double precision;not null;default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (it *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	return nil
}

// InformalOrder is a "chat" order: a free-text request against a single vendor,
// without catalog lines. It moves through the same lifecycle, OTPs and
// settlement as a regular order.
type InformalOrder struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	CustomerID uuid.UUID `json:"customer_id" gorm:"type:uuid;index;not null"`
	VendorID   uuid.UUID `json:"vendor_id" gorm:"type:uuid;index;not null"`

	Description string  `json:"description" gorm:"type:text;not null"`
	Amount      float64 `json:"amount" gorm:"type:double precision;not null;default:0"`

	ShippingAddress string   `json:"shipping_address" gorm:"type:text;not null"`
	ShippingLat     *float64 `json:"shipping_lat,omitempty" gorm:"type:double precision"`
	ShippingLng     *float64 `json:"shipping_lng,omitempty" gorm:"type:double precision"`

	PaymentStatus PaymentStatus `json:"payment_status" gorm:"type:text;index;not null;default:'unpaid'"`
	DeliveryFee   float64       `json:"delivery_fee" gorm:"type:double precision;not null;default:0"`

	PickupOTP   string `json:"-" gorm:"type:text"`
	DeliveryOTP string `json:"-" gorm:"type:text"`

	DriverID *uuid.UUID `json:"driver_id,omitempty" gorm:"type:uuid;index;default:null"`

	PickupDistanceKm float64 `json:"pickup_distance_km" gorm:"type:double precision;not null;default:0"`
	DropDistanceKm   float64 `json:"drop_distance_km" gorm:"type:double precision;not null;default:0"`
	TotalDistanceKm  float64 `json:"total_distance_km" gorm:"type:double precision;not null;default:0"`
	DriverFee        float64 `json:"driver_fee" gorm:"type:double precision;not null;default:0"`

	Status             OrderStatus        `json:"status" gorm:"type:text;index;not null;default:'pending'"`
	EstimatedArrivalAt *time.Time         `json:"estimated_arrival_at,omitempty"`
	DeliveredAt        *time.Time         `json:"delivered_at,omitempty" gorm:"index"`
	DeliveredInMin     int                `json:"delivered_in_min" gorm:"default:0"`
	FloatingCashAmount float64            `json:"floating_cash_amount" gorm:"type:double precision;not null;default:0"`
	FloatingCashStatus FloatingCashStatus `json:"floating_cash_status" gorm:"type:text;index;not null;default:'none'"`
	DriverEarning      float64            `json:"driver_earning" gorm:"type:double precision;not null;default:0"`
	EarningStatus      EarningStatus      `json:"earning_status" gorm:"type:text;index;not null;default:'unpaid'"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (o *InformalOrder) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
