package order

import (
	"context"

	"github.com/google/uuid"

	"github.com/sevabazar/delivery-backend/entity"
)

// CreateItem is one catalog line of a vendor slice at creation time.
type CreateItem struct {
	Name      string
	ImageURL  string
	Quantity  int
	UnitPrice float64
}

// CreateVendorOrder is one vendor's slice of a new order.
type CreateVendorOrder struct {
	VendorID uuid.UUID
	Items    []CreateItem
}

// CreateOrderRequest carries the data for a new regular order.
type CreateOrderRequest struct {
	CustomerID      uuid.UUID
	VendorOrders    []CreateVendorOrder
	ShippingAddress string
	ShippingLat     *float64
	ShippingLng     *float64
	PaymentStatus   entity.PaymentStatus
}

// CreateInformalOrderRequest carries the data for a new chat order.
type CreateInformalOrderRequest struct {
	CustomerID      uuid.UUID
	VendorID        uuid.UUID
	Description     string
	Amount          float64
	ShippingAddress string
	ShippingLat     *float64
	ShippingLng     *float64
	PaymentStatus   entity.PaymentStatus
}

// Service drives an order through its lifecycle. OTP gates: the pickup OTP is
// generated at creation and verified at hand-off from the vendor; the delivery
// OTP is generated at pickup verification and verified at drop-off.
type Service interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*entity.Order, error)
	CreateInformalOrder(ctx context.Context, req CreateInformalOrderRequest) (*entity.InformalOrder, error)

	// VerifyPickup checks (assigned driver, pickup OTP) and on success moves
	// the order to shipped, issues the delivery OTP and sets the ETA.
	VerifyPickup(ctx context.Context, orderID, driverID uuid.UUID, otp string) (DeliveryJob, error)

	// CompleteDelivery checks (assigned driver, delivery OTP) and on success
	// performs the terminal transition, frees the driver and credits
	// settlement. Invoking it twice yields apperr.Conflict, never a second
	// credit.
	CompleteDelivery(ctx context.Context, orderID, driverID uuid.UUID, otp string) (DeliveryJob, error)

	// Cancel moves a non-terminal order to cancelled and releases the driver
	// if one was assigned.
	Cancel(ctx context.Context, orderID uuid.UUID) (DeliveryJob, error)

	UpdateVendorOrderStatus(ctx context.Context, vendorOrderID uuid.UUID, status entity.OrderStatus) error

	ListDeliveredForDriver(ctx context.Context, driverID uuid.UUID, limit, offset int) ([]entity.Order, int64, error)
	ListActiveForCustomer(ctx context.Context, customerID uuid.UUID) ([]entity.Order, error)
}
