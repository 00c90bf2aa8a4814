package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OfferStatus tracks the outcome of a dispatch offer.
type OfferStatus string

const (
	OfferPending  OfferStatus = "pending"
	OfferAccepted OfferStatus = "accepted"
	OfferRejected OfferStatus = "rejected"
	OfferExpired  OfferStatus = "expired"
)

// OrderKind tags which order variant an offer references.
type OrderKind string

const (
	OrderKindRegular  OrderKind = "regular"
	OrderKindInformal OrderKind = "informal"
)

// Offer is a time-bounded proposal for one driver to fulfill one order.
// The (order_id, driver_id) pair is unique; recording a fresh offer for the
// same pair overwrites the previous row (idempotent upsert).
type Offer struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	OrderID   uuid.UUID `json:"order_id" gorm:"type:uuid;not null;uniqueIndex:idx_offers_order_driver"`
	OrderKind OrderKind `json:"order_kind" gorm:"type:text;not null;default:'regular'"`
	DriverID  uuid.UUID `json:"driver_id" gorm:"type:uuid;not null;uniqueIndex:idx_offers_order_driver;index"`

	PickupDistanceKm float64 `json:"pickup_distance_km" gorm:"type:double precision;not null;default:0"`
	TotalDistanceKm  float64 `json:"total_distance_km" gorm:"type:double precision;not null;default:0"`
	Earning          float64 `json:"earning" gorm:"type:double precision;not null;default:0"`

	Status OfferStatus `json:"status" gorm:"type:text;index;not null;default:'pending'"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (o *Offer) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// ExpiredAt reports whether the offer is past its TTL at the given instant,
// regardless of the stored status.
func (o *Offer) ExpiredAt(now time.Time, ttl time.Duration) bool {
	return now.Sub(o.CreatedAt) > ttl
}
