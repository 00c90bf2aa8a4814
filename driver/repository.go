package driver

import (
	"context"

	"github.com/google/uuid"

	"github.com/sevabazar/delivery-backend/entity"
	"github.com/sevabazar/delivery-backend/geo"
)

// Candidate is one eligible driver returned by a radius query, annotated with
// the haversine distance from the search origin to their current position.
type Candidate struct {
	Driver     entity.Driver `json:"driver"`
	Position   geo.Point     `json:"position"`
	DistanceKm float64       `json:"distance_km"`
}

// Repository specifies driver related database operations.
//
// AssignOrder and ClearAssignment are the only ways the hot current_order_id
// field may be written: both are conditional updates that fail with
// apperr.Conflict when the observed state has moved, so two concurrent
// dispatch/acceptance flows can never both capture the same driver.
type Repository interface {
	StoreUser(ctx context.Context, u *entity.User) (*entity.User, error)
	StoreDriver(ctx context.Context, d *entity.Driver) (*entity.Driver, error)
	GetDriverByID(ctx context.Context, id uuid.UUID) (*entity.Driver, error)
	GetDriverByUserID(ctx context.Context, userID uuid.UUID) (*entity.Driver, error)
	PhoneExists(ctx context.Context, phone string) (bool, error)

	UpdateApproval(ctx context.Context, driverID uuid.UUID, status entity.ApprovalStatus) error
	SetOnline(ctx context.Context, driverID uuid.UUID, online bool) error
	UpdateLocation(ctx context.Context, driverID uuid.UUID, lat, lng *float64) error
	UpdateDeviceToken(ctx context.Context, driverID uuid.UUID, token string) error

	// FindCandidates returns approved, online, unassigned drivers within
	// radiusKm of origin, ordered by ascending distance (ties broken by
	// driver id). Read-only; eligibility is evaluated against the backing
	// store at call time.
	FindCandidates(ctx context.Context, origin geo.Point, radiusKm float64, limit int) ([]Candidate, error)

	// AssignOrder sets current_order_id to orderID iff it is currently null.
	AssignOrder(ctx context.Context, driverID, orderID uuid.UUID) error
	// ClearAssignment nulls current_order_id iff it currently equals orderID.
	ClearAssignment(ctx context.Context, driverID, orderID uuid.UUID) error

	// CreditEarnings applies a settlement delta: wallet always, floating cash
	// only for cash-collected orders.
	CreditEarnings(ctx context.Context, driverID uuid.UUID, wallet, floatingCash float64) error
	// ReduceFloatingCash clears settled COD money from the driver row.
	ReduceFloatingCash(ctx context.Context, driverID uuid.UUID, amount float64) error
}
