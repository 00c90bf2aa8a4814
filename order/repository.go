package order

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sevabazar/delivery-backend/entity"
)

// SettlementStamp carries the per-order settlement fields written when a
// delivery is credited.
type SettlementStamp struct {
	FloatingCashAmount float64
	FloatingCashStatus entity.FloatingCashStatus
	DriverEarning      float64
	EarningStatus      entity.EarningStatus
}

// FeeBreakdown is the driver-fee breakdown stamped on acceptance.
type FeeBreakdown struct {
	PickupDistanceKm float64
	DropDistanceKm   float64
	TotalDistanceKm  float64
	DriverFee        float64
}

// Repository defines DB operations for both order variants.
//
// Every state transition is a conditional update guarded on the previous
// status (and, where relevant, the assigned driver); a guard that matches no
// row surfaces as apperr.Conflict so callers can distinguish a lost race from
// a missing order.
type Repository interface {
	CreateOrder(ctx context.Context, o *entity.Order) (*entity.Order, error)
	CreateInformalOrder(ctx context.Context, o *entity.InformalOrder) (*entity.InformalOrder, error)

	GetOrderByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	GetInformalOrderByID(ctx context.Context, id uuid.UUID) (*entity.InformalOrder, error)

	// ResolveJob probes the regular orders first, then the informal ones, and
	// returns the variant behind the common DeliveryJob view. The variant is
	// decided here, once, at the boundary.
	ResolveJob(ctx context.Context, id uuid.UUID) (DeliveryJob, error)

	// AssignDriver captures the order for a driver: guarded on status=pending
	// and no driver currently set; moves status to processing and stamps the
	// fee breakdown computed for the accepted offer.
	AssignDriver(ctx context.Context, kind entity.OrderKind, id, driverID uuid.UUID, fee FeeBreakdown) error

	// MarkShipped is the pickup-OTP transition: guarded on status=processing
	// and the assigned driver; stores the fresh delivery OTP and the ETA.
	MarkShipped(ctx context.Context, kind entity.OrderKind, id, driverID uuid.UUID, deliveryOTP string, eta time.Time) error

	// MarkDelivered is the terminal transition and the settlement gate:
	// guarded on status=shipped and the assigned driver. delivered_at is set
	// here, exactly once.
	MarkDelivered(ctx context.Context, kind entity.OrderKind, id, driverID uuid.UUID, deliveredAt time.Time, deliveredInMin int) error

	// Cancel moves any non-terminal order to cancelled.
	Cancel(ctx context.Context, kind entity.OrderKind, id uuid.UUID) error

	// StampSettlement writes the settlement fields, guarded on the earning
	// still being unpaid so a retried settlement cannot double-credit.
	StampSettlement(ctx context.Context, kind entity.OrderKind, id uuid.UUID, stamp SettlementStamp) error

	// MarkFloatingCashCleared flips pending floats to cleared for a driver and
	// returns the cleared total.
	MarkFloatingCashCleared(ctx context.Context, driverID uuid.UUID) (float64, error)

	UpdateVendorOrderStatus(ctx context.Context, vendorOrderID uuid.UUID, status entity.OrderStatus) error

	// ListDeliveredJobsForDriver returns delivered jobs of both variants for
	// settlement summaries (no pagination; summary scans the full set).
	ListDeliveredJobsForDriver(ctx context.Context, driverID uuid.UUID) ([]DeliveryJob, error)

	// ListDeliveredOrdersForDriver returns delivered regular orders, newest
	// first, with limit/offset pagination for the history endpoint.
	ListDeliveredOrdersForDriver(ctx context.Context, driverID uuid.UUID, limit, offset int) ([]entity.Order, error)
	CountDeliveredOrdersForDriver(ctx context.Context, driverID uuid.UUID) (int64, error)

	// ListActiveOrdersForCustomer returns non-terminal regular orders, newest first.
	ListActiveOrdersForCustomer(ctx context.Context, customerID uuid.UUID) ([]entity.Order, error)
}
