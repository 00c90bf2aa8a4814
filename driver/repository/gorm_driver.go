package repository

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sevabazar/delivery-backend/apperr"
	"github.com/sevabazar/delivery-backend/driver"
	"github.com/sevabazar/delivery-backend/entity"
	"github.com/sevabazar/delivery-backend/geo"
)

// GormDriverRepo implements driver.Repository using GORM (v2).
type GormDriverRepo struct {
	db *gorm.DB
}

func NewGormDriverRepo(db *gorm.DB) driver.Repository {
	return &GormDriverRepo{db: db}
}

func (r *GormDriverRepo) StoreUser(ctx context.Context, u *entity.User) (*entity.User, error) {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

func (r *GormDriverRepo) StoreDriver(ctx context.Context, d *entity.Driver) (*entity.Driver, error) {
	if err := r.db.WithContext(ctx).Create(d).Error; err != nil {
		return nil, err
	}
	return d, nil
}

func (r *GormDriverRepo) GetDriverByID(ctx context.Context, id uuid.UUID) (*entity.Driver, error) {
	var d entity.Driver
	if err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("driver_not_found", "driver does not exist")
		}
		return nil, err
	}
	return &d, nil
}

func (r *GormDriverRepo) GetDriverByUserID(ctx context.Context, userID uuid.UUID) (*entity.Driver, error) {
	var d entity.Driver
	if err := r.db.WithContext(ctx).First(&d, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("driver_not_found", "driver does not exist")
		}
		return nil, err
	}
	return &d, nil
}

func (r *GormDriverRepo) PhoneExists(ctx context.Context, phone string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.User{}).Where("phone = ? AND role = ?", phone, "driver").Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormDriverRepo) UpdateApproval(ctx context.Context, driverID uuid.UUID, status entity.ApprovalStatus) error {
	res := r.db.WithContext(ctx).Model(&entity.Driver{}).Where("id = ?", driverID).Update("approval_status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("driver_not_found", "driver does not exist")
	}
	return nil
}

func (r *GormDriverRepo) SetOnline(ctx context.Context, driverID uuid.UUID, online bool) error {
	return r.db.WithContext(ctx).Model(&entity.Driver{}).Where("id = ?", driverID).Update("online", online).Error
}

func (r *GormDriverRepo) UpdateLocation(ctx context.Context, driverID uuid.UUID, lat, lng *float64) error {
	return r.db.WithContext(ctx).Model(&entity.Driver{}).Where("id = ?", driverID).Updates(map[string]interface{}{
		"latitude":            lat,
		"longitude":           lng,
		"location_updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
	}).Error
}

func (r *GormDriverRepo) UpdateDeviceToken(ctx context.Context, driverID uuid.UUID, token string) error {
	return r.db.WithContext(ctx).Model(&entity.Driver{}).Where("id = ?", driverID).Update("device_token", token).Error
}

// FindCandidates prefilters with a bounding box in SQL, then applies the exact
// haversine distance in Go so the radius cut and the reported distance come
// from the same formula.
func (r *GormDriverRepo) FindCandidates(ctx context.Context, origin geo.Point, radiusKm float64, limit int) ([]driver.Candidate, error) {
	dLat, dLng := geo.BoundingDelta(origin.Lat, radiusKm)

	var rows []entity.Driver
	err := r.db.WithContext(ctx).
		Where("approval_status = ?", entity.DriverApproved).
		Where("online = ?", true).
		Where("current_order_id IS NULL").
		Where("latitude IS NOT NULL AND longitude IS NOT NULL").
		Where("latitude BETWEEN ? AND ?", origin.Lat-dLat, origin.Lat+dLat).
		Where("longitude BETWEEN ? AND ?", origin.Lng-dLng, origin.Lng+dLng).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	candidates := make([]driver.Candidate, 0, len(rows))
	for i := range rows {
		d := rows[i]
		pos := geo.Point{Lat: *d.Latitude, Lng: *d.Longitude}
		dist := geo.DistanceKm(origin, pos)
		if dist > radiusKm {
			continue
		}
		candidates = append(candidates, driver.Candidate{Driver: d, Position: pos, DistanceKm: dist})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].DistanceKm != candidates[j].DistanceKm {
			return candidates[i].DistanceKm < candidates[j].DistanceKm
		}
		return strings.Compare(candidates[i].Driver.ID.String(), candidates[j].Driver.ID.String()) < 0
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

func (r *GormDriverRepo) AssignOrder(ctx context.Context, driverID, orderID uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&entity.Driver{}).
		Where("id = ? AND current_order_id IS NULL", driverID).
		Update("current_order_id", orderID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.Conflict("driver_busy", "driver already holds an assignment")
	}
	return nil
}

func (r *GormDriverRepo) ClearAssignment(ctx context.Context, driverID, orderID uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&entity.Driver{}).
		Where("id = ? AND current_order_id = ?", driverID, orderID).
		Update("current_order_id", nil)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.Conflict("assignment_mismatch", "driver is not assigned to this order")
	}
	return nil
}

func (r *GormDriverRepo) CreditEarnings(ctx context.Context, driverID uuid.UUID, wallet, floatingCash float64) error {
	res := r.db.WithContext(ctx).Model(&entity.Driver{}).
		Where("id = ?", driverID).
		Updates(map[string]interface{}{
			"wallet_balance": gorm.Expr("wallet_balance + ?", wallet),
			"floating_cash":  gorm.Expr("floating_cash + ?", floatingCash),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("driver_not_found", "driver does not exist")
	}
	return nil
}

func (r *GormDriverRepo) ReduceFloatingCash(ctx context.Context, driverID uuid.UUID, amount float64) error {
	res := r.db.WithContext(ctx).Model(&entity.Driver{}).
		Where("id = ?", driverID).
		Update("floating_cash", gorm.Expr("floating_cash - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("driver_not_found", "driver does not exist")
	}
	return nil
}
