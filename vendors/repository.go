package vendors

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sevabazar/delivery-backend/apperr"
	"github.com/sevabazar/delivery-backend/entity"
	"github.com/sevabazar/delivery-backend/geo"
)

// Repository resolves vendors for pickup locations and customer-facing
// visibility queries. Catalog management lives in the storefront service.
type Repository interface {
	Store(ctx context.Context, v *entity.Vendor) (*entity.Vendor, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Vendor, error)
	// ListVisible returns active vendors within radiusKm of the point,
	// ordered by ascending distance.
	ListVisible(ctx context.Context, origin geo.Point, radiusKm float64) ([]entity.Vendor, error)
}

type gormRepository struct{ db *gorm.DB }

func NewGormRepository(db *gorm.DB) Repository { return &gormRepository{db: db} }

func (r *gormRepository) Store(ctx context.Context, v *entity.Vendor) (*entity.Vendor, error) {
	if err := r.db.WithContext(ctx).Create(v).Error; err != nil {
		return nil, err
	}
	return v, nil
}

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Vendor, error) {
	var v entity.Vendor
	if err := r.db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("vendor_not_found", "vendor does not exist")
		}
		return nil, err
	}
	return &v, nil
}

func (r *gormRepository) ListVisible(ctx context.Context, origin geo.Point, radiusKm float64) ([]entity.Vendor, error) {
	dLat, dLng := geo.BoundingDelta(origin.Lat, radiusKm)
	var rows []entity.Vendor
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Where("latitude IS NOT NULL AND longitude IS NOT NULL").
		Where("latitude BETWEEN ? AND ?", origin.Lat-dLat, origin.Lat+dLat).
		Where("longitude BETWEEN ? AND ?", origin.Lng-dLng, origin.Lng+dLng).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	type scored struct {
		v entity.Vendor
		d float64
	}
	visible := make([]scored, 0, len(rows))
	for i := range rows {
		d := geo.DistanceKm(origin, geo.Point{Lat: *rows[i].Latitude, Lng: *rows[i].Longitude})
		if d <= radiusKm {
			visible = append(visible, scored{v: rows[i], d: d})
		}
	}
	sort.Slice(visible, func(i, j int) bool { return visible[i].d < visible[j].d })

	out := make([]entity.Vendor, len(visible))
	for i := range visible {
		out[i] = visible[i].v
	}
	return out, nil
}
