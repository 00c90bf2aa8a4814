package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TierCondition selects how a pricing tier matches a distance.
type TierCondition string

const (
	TierRange       TierCondition = "range"       // [MinKm, MaxKm)
	TierGreaterThan TierCondition = "greaterThan" // distance > MinKm
	TierLessThan    TierCondition = "lessThan"    // distance < MaxKm
)

// PricingTier is one row of a distance-bracketed fee lookup. Tiers are scanned
// in order; the first match wins.
type PricingTier struct {
	Condition TierCondition `json:"condition"`
	MinKm     float64       `json:"min_km"`
	MaxKm     float64       `json:"max_km"`
	Fee       float64       `json:"fee"`
}

// DeliveryFeeFormula is the fallback used when no tier matches: BasePay up to
// BaseDistanceKm, then PerKmRate for every kilometer beyond it.
type DeliveryFeeFormula struct {
	BasePay        float64 `json:"base_pay"`
	BaseDistanceKm float64 `json:"base_distance_km"`
	PerKmRate      float64 `json:"per_km_rate"`
}

// PayoutMode selects how driver earnings are computed.
type PayoutMode string

const (
	PayoutTiered  PayoutMode = "tiered"
	PayoutFormula PayoutMode = "formula"
)

// Settings is the singleton pricing/dispatch configuration row. It is lazily
// created with defaults on first read and mutated only by admin update; every
// dispatch/pricing operation loads it fresh and passes it by value.
type Settings struct {
	ID uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`

	VendorVisibilityRadiusKm float64 `json:"vendor_visibility_radius_km" gorm:"type:double precision;not null;default:10"`
	DriverSearchRadiusKm     float64 `json:"driver_search_radius_km" gorm:"type:double precision;not null;default:5"`

	DeliveryChargeTiers []PricingTier `json:"delivery_charge_tiers" gorm:"serializer:json"`
	DriverPaymentTiers  []PricingTier `json:"driver_payment_tiers" gorm:"serializer:json"`

	DriverPayoutMode  PayoutMode         `json:"driver_payout_mode" gorm:"type:text;not null;default:'tiered'"`
	DriverDeliveryFee DeliveryFeeFormula `json:"driver_delivery_fee" gorm:"serializer:json"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Settings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// DefaultSettings returns the documented configuration defaults.
func DefaultSettings() *Settings {
	return &Settings{
		VendorVisibilityRadiusKm: 10,
		DriverSearchRadiusKm:     5,
		DriverPayoutMode:         PayoutTiered,
		DriverDeliveryFee: DeliveryFeeFormula{
			BasePay:        30,
			BaseDistanceKm: 5,
			PerKmRate:      10,
		},
	}
}
