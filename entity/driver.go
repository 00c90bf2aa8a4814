package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VehicleType enumerates driver vehicle capabilities.
type VehicleType string

const (
	VehicleBike    VehicleType = "bike"
	VehicleMotor   VehicleType = "motorbike"
	VehicleCar     VehicleType = "car"
	VehicleBicycle VehicleType = "bicycle"
	VehicleWalker  VehicleType = "walker"
	VehicleOther   VehicleType = "other"
)

// ApprovalStatus gates whether a driver may receive work.
type ApprovalStatus string

const (
	DriverApproved  ApprovalStatus = "approved"
	DriverSuspended ApprovalStatus = "suspended"
)

// Driver stores courier-specific data collected at registration and afterwards.
// CurrentOrderID is the hot field: a driver holding an assignment is never
// offered new work, and the field is only ever mutated through conditional
// writes (see driver.Repository.AssignOrder / ClearAssignment).
type Driver struct {
	ID                uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	UserID            uuid.UUID      `json:"user_id" gorm:"type:uuid;index;not null"`
	PrimaryVehicle    VehicleType    `json:"primary_vehicle" gorm:"type:text;index"`
	VehicleDetails    string         `json:"vehicle_details,omitempty" gorm:"type:text"`
	ApprovalStatus    ApprovalStatus `json:"approval_status" gorm:"type:text;index;not null;default:'suspended'"`
	Online            bool           `json:"online" gorm:"default:false;index"`
	Latitude          *float64       `json:"latitude,omitempty" gorm:"type:double precision"`
	Longitude         *float64       `json:"longitude,omitempty" gorm:"type:double precision"`
	LocationUpdatedAt *time.Time     `json:"location_updated_at,omitempty"`
	CurrentOrderID    *uuid.UUID     `json:"current_order_id,omitempty" gorm:"type:uuid;index;default:null"`
	WalletBalance     float64        `json:"wallet_balance" gorm:"type:double precision;not null;default:0"`
	FloatingCash      float64        `json:"floating_cash" gorm:"type:double precision;not null;default:0"`
	DeviceToken       string         `json:"-" gorm:"type:text"` // FCM registration token
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `json:"-" gorm:"index"`
}

func (d *Driver) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
