package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Vendor is the pickup side of an order. Catalog management lives outside this
// service; dispatch only needs the stored location and display details.
type Vendor struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Name      string         `json:"name" gorm:"type:text;not null"`
	Address   string         `json:"address" gorm:"type:text"`
	Latitude  *float64       `json:"latitude,omitempty" gorm:"type:double precision"`
	Longitude *float64       `json:"longitude,omitempty" gorm:"type:double precision"`
	Active    bool           `json:"active" gorm:"default:true;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (v *Vendor) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
