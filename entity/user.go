package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the minimal auth profile shared by drivers, customers and admins.
type User struct {
	ID            uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	FirstName     string         `json:"first_name" gorm:"type:text;not null"`
	LastName      string         `json:"last_name" gorm:"type:text;not null"`
	Phone         string         `json:"phone" gorm:"type:text;index;not null"`
	FirebaseUID   *string        `json:"firebase_uid,omitempty" gorm:"type:text;uniqueIndex;default:null"`
	PasswordHash  string         `json:"-" gorm:"type:text"`
	PhoneVerified bool           `json:"phone_verified" gorm:"default:false;index"`
	Role          string         `json:"role" gorm:"type:text;index;not null"` // "driver", "customer" or "admin"
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
