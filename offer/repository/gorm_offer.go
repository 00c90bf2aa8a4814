package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sevabazar/delivery-backend/apperr"
	"github.com/sevabazar/delivery-backend/entity"
	"github.com/sevabazar/delivery-backend/offer"
)

// GormOfferRepo implements offer.Repository using GORM (v2).
type GormOfferRepo struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormOfferRepo(db *gorm.DB) *GormOfferRepo {
	return &GormOfferRepo{db: db, now: time.Now}
}

// WithClock overrides the time source. Tests use this to pin TTL arithmetic.
func (r *GormOfferRepo) WithClock(now func() time.Time) *GormOfferRepo {
	r.now = now
	return r
}

// RecordOffer upserts on the (order_id, driver_id) unique index: an existing
// row gets fresh distances/earning, status back to pending and a new TTL
// window; otherwise a new row is created.
func (r *GormOfferRepo) RecordOffer(ctx context.Context, p offer.RecordOfferParams) (*entity.Offer, error) {
	now := r.now()
	o := &entity.Offer{
		OrderID:          p.OrderID,
		OrderKind:        p.OrderKind,
		DriverID:         p.DriverID,
		PickupDistanceKm: p.PickupDistanceKm,
		TotalDistanceKm:  p.TotalDistanceKm,
		Earning:          p.Earning,
		Status:           entity.OfferPending,
		CreatedAt:        now,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "order_id"}, {Name: "driver_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"order_kind":         p.OrderKind,
			"pickup_distance_km": p.PickupDistanceKm,
			"total_distance_km":  p.TotalDistanceKm,
			"earning":            p.Earning,
			"status":             entity.OfferPending,
			"created_at":         now,
			"updated_at":         now,
		}),
	}).Create(o).Error
	if err != nil {
		return nil, err
	}
	return r.GetForPair(ctx, p.OrderID, p.DriverID)
}

func (r *GormOfferRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Offer, error) {
	var o entity.Offer
	if err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("offer_not_found", "offer does not exist")
		}
		return nil, err
	}
	return &o, nil
}

func (r *GormOfferRepo) GetForPair(ctx context.Context, orderID, driverID uuid.UUID) (*entity.Offer, error) {
	var o entity.Offer
	if err := r.db.WithContext(ctx).First(&o, "order_id = ? AND driver_id = ?", orderID, driverID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("offer_not_found", "no offer for this order and driver")
		}
		return nil, err
	}
	return &o, nil
}

// Accept transitions pending → accepted, refusing rows past TTL even when the
// sweep has not touched them yet.
func (r *GormOfferRepo) Accept(ctx context.Context, id uuid.UUID) error {
	cutoff := r.now().Add(-offer.TTL)
	res := r.db.WithContext(ctx).Model(&entity.Offer{}).
		Where("id = ? AND status = ? AND created_at >= ?", id, entity.OfferPending, cutoff).
		Update("status", entity.OfferAccepted)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.Conflict("offer_unavailable", "offer is not pending or has expired")
	}
	return nil
}

func (r *GormOfferRepo) Reject(ctx context.Context, id uuid.UUID) error {
	return r.transition(ctx, id, entity.OfferRejected)
}

func (r *GormOfferRepo) Expire(ctx context.Context, id uuid.UUID) error {
	return r.transition(ctx, id, entity.OfferExpired)
}

func (r *GormOfferRepo) transition(ctx context.Context, id uuid.UUID, to entity.OfferStatus) error {
	res := r.db.WithContext(ctx).Model(&entity.Offer{}).
		Where("id = ? AND status = ?", id, entity.OfferPending).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.Conflict("offer_unavailable", "offer is not pending")
	}
	return nil
}

func (r *GormOfferRepo) ActiveForDriver(ctx context.Context, driverID uuid.UUID) ([]entity.Offer, error) {
	cutoff := r.now().Add(-offer.TTL)
	var list []entity.Offer
	err := r.db.WithContext(ctx).
		Where("driver_id = ? AND status = ? AND created_at >= ?", driverID, entity.OfferPending, cutoff).
		Order("created_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *GormOfferRepo) ExpireStale(ctx context.Context) (int64, error) {
	cutoff := r.now().Add(-offer.TTL)
	res := r.db.WithContext(ctx).Model(&entity.Offer{}).
		Where("status = ? AND created_at < ?", entity.OfferPending, cutoff).
		Update("status", entity.OfferExpired)
	return res.RowsAffected, res.Error
}
