package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/sevabazar/delivery-backend/apperr"
	"github.com/sevabazar/delivery-backend/driver"
	"github.com/sevabazar/delivery-backend/entity"
)

// driverService implements driver.Service.
type driverService struct {
	repo driver.Repository
}

// NewDriverService constructs a driver.Service backed by the provided repository.
func NewDriverService(repo driver.Repository) driver.Service {
	return &driverService{repo: repo}
}

// Register persists the base user and the driver profile. Drivers start
// suspended unless created by an administrator; approval is a separate
// administrative action.
func (s *driverService) Register(ctx context.Context, req driver.RegisterDriverRequest) (*entity.Driver, error) {
	if req.Phone == "" {
		return nil, apperr.InvalidInput("missing_phone", "phone is required")
	}
	exists, err := s.repo.PhoneExists(ctx, req.Phone)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflict("phone_taken", "driver with this phone already exists")
	}

	u := &entity.User{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Phone:         req.Phone,
		Role:          "driver",
		PhoneVerified: true,
	}
	if req.FirebaseUID != "" {
		uid := req.FirebaseUID
		u.FirebaseUID = &uid
	}
	createdUser, err := s.repo.StoreUser(ctx, u)
	if err != nil {
		return nil, err
	}

	approval := entity.DriverSuspended
	if req.CreatedByAdmin {
		approval = entity.DriverApproved
	}
	d := &entity.Driver{
		UserID:         createdUser.ID,
		PrimaryVehicle: req.PrimaryVehicle,
		VehicleDetails: req.VehicleDetails,
		ApprovalStatus: approval,
		DeviceToken:    req.DeviceToken,
	}
	return s.repo.StoreDriver(ctx, d)
}

func (s *driverService) GetByID(ctx context.Context, driverID uuid.UUID) (*entity.Driver, error) {
	return s.repo.GetDriverByID(ctx, driverID)
}

func (s *driverService) SetOnline(ctx context.Context, driverID uuid.UUID, online bool) error {
	return s.repo.SetOnline(ctx, driverID, online)
}

func (s *driverService) UpdateLocation(ctx context.Context, driverID uuid.UUID, lat, lng *float64) error {
	if (lat == nil) != (lng == nil) {
		return apperr.InvalidInput("bad_coordinates", "latitude and longitude must be provided together")
	}
	return s.repo.UpdateLocation(ctx, driverID, lat, lng)
}

func (s *driverService) UpdateDeviceToken(ctx context.Context, driverID uuid.UUID, token string) error {
	return s.repo.UpdateDeviceToken(ctx, driverID, token)
}

func (s *driverService) Approve(ctx context.Context, driverID uuid.UUID) error {
	return s.repo.UpdateApproval(ctx, driverID, entity.DriverApproved)
}

func (s *driverService) Suspend(ctx context.Context, driverID uuid.UUID) error {
	return s.repo.UpdateApproval(ctx, driverID, entity.DriverSuspended)
}
