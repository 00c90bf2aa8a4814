package driver

import (
	"context"

	"github.com/google/uuid"

	"github.com/sevabazar/delivery-backend/entity"
)

// RegisterDriverRequest carries the data required to register a driver.
// The handler verifies Firebase phone auth and supplies FirebaseUID before
// calling the service.
type RegisterDriverRequest struct {
	FirstName      string
	LastName       string
	Phone          string
	FirebaseUID    string
	PrimaryVehicle entity.VehicleType
	VehicleDetails string
	DeviceToken    string
	// CreatedByAdmin skips the default-suspended gate.
	CreatedByAdmin bool
}

// Service exposes driver-facing business operations.
type Service interface {
	Register(ctx context.Context, req RegisterDriverRequest) (*entity.Driver, error)
	GetByID(ctx context.Context, driverID uuid.UUID) (*entity.Driver, error)

	SetOnline(ctx context.Context, driverID uuid.UUID, online bool) error
	UpdateLocation(ctx context.Context, driverID uuid.UUID, lat, lng *float64) error
	UpdateDeviceToken(ctx context.Context, driverID uuid.UUID, token string) error

	// Approve and Suspend are administrative actions.
	Approve(ctx context.Context, driverID uuid.UUID) error
	Suspend(ctx context.Context, driverID uuid.UUID) error
}
