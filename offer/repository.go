package offer

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sevabazar/delivery-backend/entity"
)

// TTL is how long a dispatch offer stays acceptable. Offers older than this
// are treated as expired even before the sweep marks them so.
const TTL = 5 * time.Minute

// RecordOfferParams carries the fresh values for an idempotent offer upsert.
type RecordOfferParams struct {
	OrderID          uuid.UUID
	OrderKind        entity.OrderKind
	DriverID         uuid.UUID
	PickupDistanceKm float64
	TotalDistanceKm  float64
	Earning          float64
}

// Repository persists one row per (order, driver) dispatch offer.
//
// RecordOffer is keyed on that pair: concurrent or retried calls collapse into
// a single row holding the latest values with status reset to pending.
// Accept, Reject and Expire are guarded transitions out of pending; Accept
// additionally refuses offers past TTL.
type Repository interface {
	RecordOffer(ctx context.Context, p RecordOfferParams) (*entity.Offer, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Offer, error)
	GetForPair(ctx context.Context, orderID, driverID uuid.UUID) (*entity.Offer, error)

	Accept(ctx context.Context, id uuid.UUID) error
	Reject(ctx context.Context, id uuid.UUID) error
	Expire(ctx context.Context, id uuid.UUID) error

	// ActiveForDriver lists pending, unexpired offers for a driver, newest first.
	ActiveForDriver(ctx context.Context, driverID uuid.UUID) ([]entity.Offer, error)
	// ExpireStale marks pending offers older than TTL as expired and returns
	// how many rows were swept.
	ExpireStale(ctx context.Context) (int64, error)
}
