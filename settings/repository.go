// Package settings loads and updates the singleton pricing/dispatch
// configuration row. Callers fetch it at the start of an operation and pass it
// around by value; nothing in this package caches.
package settings

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sevabazar/delivery-backend/entity"
)

// Repository reads and mutates the settings singleton.
type Repository interface {
	// Get returns the settings row, creating it with defaults when absent.
	Get(ctx context.Context) (*entity.Settings, error)
	// Update replaces the recognized options. Admin-only at the HTTP layer.
	Update(ctx context.Context, s *entity.Settings) (*entity.Settings, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Get(ctx context.Context) (*entity.Settings, error) {
	var s entity.Settings
	err := r.db.WithContext(ctx).Order("created_at ASC").First(&s).Error
	if err == nil {
		return &s, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	def := entity.DefaultSettings()
	if err := r.db.WithContext(ctx).Create(def).Error; err != nil {
		// Lost a race with a concurrent first read; the row exists now.
		var again entity.Settings
		if ferr := r.db.WithContext(ctx).Order("created_at ASC").First(&again).Error; ferr == nil {
			return &again, nil
		}
		return nil, err
	}
	return def, nil
}

func (r *gormRepository) Update(ctx context.Context, s *entity.Settings) (*entity.Settings, error) {
	current, err := r.Get(ctx)
	if err != nil {
		return nil, err
	}
	current.VendorVisibilityRadiusKm = s.VendorVisibilityRadiusKm
	current.DriverSearchRadiusKm = s.DriverSearchRadiusKm
	current.DeliveryChargeTiers = s.DeliveryChargeTiers
	current.DriverPaymentTiers = s.DriverPaymentTiers
	current.DriverPayoutMode = s.DriverPayoutMode
	current.DriverDeliveryFee = s.DriverDeliveryFee
	if err := r.db.WithContext(ctx).Save(current).Error; err != nil {
		return nil, err
	}
	return current, nil
}
