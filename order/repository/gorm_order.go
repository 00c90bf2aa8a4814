package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sevabazar/delivery-backend/apperr"
	"github.com/sevabazar/delivery-backend/entity"
	orderpkg "github.com/sevabazar/delivery-backend/order"
)

type GormOrderRepo struct{ db *gorm.DB }

func NewGormOrderRepo(db *gorm.DB) orderpkg.Repository { return &GormOrderRepo{db: db} }

func (r *GormOrderRepo) CreateOrder(ctx context.Context, o *entity.Order) (*entity.Order, error) {
	if err := r.db.WithContext(ctx).Create(o).Error; err != nil {
		return nil, err
	}
	return o, nil
}

func (r *GormOrderRepo) CreateInformalOrder(ctx context.Context, o *entity.InformalOrder) (*entity.InformalOrder, error) {
	if err := r.db.WithContext(ctx).Create(o).Error; err != nil {
		return nil, err
	}
	return o, nil
}

func (r *GormOrderRepo) GetOrderByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	var o entity.Order
	err := r.db.WithContext(ctx).Preload("VendorOrders.Items").First(&o, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("order_not_found", "order does not exist")
		}
		return nil, err
	}
	return &o, nil
}

func (r *GormOrderRepo) GetInformalOrderByID(ctx context.Context, id uuid.UUID) (*entity.InformalOrder, error) {
	var o entity.InformalOrder
	err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("order_not_found", "informal order does not exist")
		}
		return nil, err
	}
	return &o, nil
}

// ResolveJob decides the order variant once: regular orders first, chat orders
// as the fallback.
func (r *GormOrderRepo) ResolveJob(ctx context.Context, id uuid.UUID) (orderpkg.DeliveryJob, error) {
	if o, err := r.GetOrderByID(ctx, id); err == nil {
		return orderpkg.RegularJob{Order: o}, nil
	} else if !apperr.IsKind(err, apperr.KindNotFound) {
		return nil, err
	}
	io, err := r.GetInformalOrderByID(ctx, id)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, apperr.NotFound("order_not_found", "no order or informal order with this id")
		}
		return nil, err
	}
	return orderpkg.InformalJob{Order: io}, nil
}

func (r *GormOrderRepo) model(kind entity.OrderKind) interface{} {
	if kind == entity.OrderKindInformal {
		return &entity.InformalOrder{}
	}
	return &entity.Order{}
}

func (r *GormOrderRepo) AssignDriver(ctx context.Context, kind entity.OrderKind, id, driverID uuid.UUID, fee orderpkg.FeeBreakdown) error {
	res := r.db.WithContext(ctx).Model(r.model(kind)).
		Where("id = ? AND status = ? AND driver_id IS NULL", id, entity.OrderPending).
		Updates(map[string]interface{}{
			"driver_id":          driverID,
			"status":             entity.OrderProcessing,
			"pickup_distance_km": fee.PickupDistanceKm,
			"drop_distance_km":   fee.DropDistanceKm,
			"total_distance_km":  fee.TotalDistanceKm,
			"driver_fee":         fee.DriverFee,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.Conflict("order_taken", "order is no longer pending or already has a driver")
	}
	return nil
}

func (r *GormOrderRepo) MarkShipped(ctx context.Context, kind entity.OrderKind, id, driverID uuid.UUID, deliveryOTP string, eta time.Time) error {
	res := r.db.WithContext(ctx).Model(r.model(kind)).
		Where("id = ? AND status = ? AND driver_id = ?", id, entity.OrderProcessing, driverID).
		Updates(map[string]interface{}{
			"status":               entity.OrderShipped,
			"delivery_otp":         deliveryOTP,
			"estimated_arrival_at": eta,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.Conflict("pickup_conflict", "order is not awaiting pickup by this driver")
	}
	return nil
}

func (r *GormOrderRepo) MarkDelivered(ctx context.Context, kind entity.OrderKind, id, driverID uuid.UUID, deliveredAt time.Time, deliveredInMin int) error {
	res := r.db.WithContext(ctx).Model(r.model(kind)).
		Where("id = ? AND status = ? AND driver_id = ?", id, entity.OrderShipped, driverID).
		Updates(map[string]interface{}{
			"status":           entity.OrderDelivered,
			"delivered_at":     deliveredAt,
			"delivered_in_min": deliveredInMin,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.Conflict("delivery_conflict", "order is not in transit with this driver")
	}
	return nil
}

func (r *GormOrderRepo) Cancel(ctx context.Context, kind entity.OrderKind, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(r.model(kind)).
		Where("id = ? AND status NOT IN (?, ?)", id, entity.OrderDelivered, entity.OrderCancelled).
		Update("status", entity.OrderCancelled)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.Conflict("cancel_conflict", "order is already terminal")
	}
	return nil
}

func (r *GormOrderRepo) StampSettlement(ctx context.Context, kind entity.OrderKind, id uuid.UUID, stamp orderpkg.SettlementStamp) error {
	res := r.db.WithContext(ctx).Model(r.model(kind)).
		Where("id = ? AND earning_status = ?", id, entity.EarningUnpaid).
		Updates(map[string]interface{}{
			"floating_cash_amount": stamp.FloatingCashAmount,
			"floating_cash_status": stamp.FloatingCashStatus,
			"driver_earning":       stamp.DriverEarning,
			"earning_status":       stamp.EarningStatus,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.Conflict("already_settled", "order earning has already been credited")
	}
	return nil
}

func (r *GormOrderRepo) MarkFloatingCashCleared(ctx context.Context, driverID uuid.UUID) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{&entity.Order{}, &entity.InformalOrder{}} {
			var sum *float64
			if err := tx.Model(m).
				Where("driver_id = ? AND floating_cash_status = ?", driverID, entity.FloatingCashPending).
				Select("SUM(floating_cash_amount)").Scan(&sum).Error; err != nil {
				return err
			}
			if sum != nil {
				total += *sum
			}
			if err := tx.Model(m).
				Where("driver_id = ? AND floating_cash_status = ?", driverID, entity.FloatingCashPending).
				Update("floating_cash_status", entity.FloatingCashCleared).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *GormOrderRepo) UpdateVendorOrderStatus(ctx context.Context, vendorOrderID uuid.UUID, status entity.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&entity.VendorOrder{}).
		Where("id = ?", vendorOrderID).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("vendor_order_not_found", "vendor order does not exist")
	}
	return nil
}

func (r *GormOrderRepo) ListDeliveredJobsForDriver(ctx context.Context, driverID uuid.UUID) ([]orderpkg.DeliveryJob, error) {
	var regular []entity.Order
	if err := r.db.WithContext(ctx).Preload("VendorOrders.Items").
		Where("driver_id = ? AND status = ?", driverID, entity.OrderDelivered).
		Find(&regular).Error; err != nil {
		return nil, err
	}
	var informal []entity.InformalOrder
	if err := r.db.WithContext(ctx).
		Where("driver_id = ? AND status = ?", driverID, entity.OrderDelivered).
		Find(&informal).Error; err != nil {
		return nil, err
	}

	jobs := make([]orderpkg.DeliveryJob, 0, len(regular)+len(informal))
	for i := range regular {
		jobs = append(jobs, orderpkg.RegularJob{Order: &regular[i]})
	}
	for i := range informal {
		jobs = append(jobs, orderpkg.InformalJob{Order: &informal[i]})
	}
	return jobs, nil
}

func (r *GormOrderRepo) ListDeliveredOrdersForDriver(ctx context.Context, driverID uuid.UUID, limit, offset int) ([]entity.Order, error) {
	var list []entity.Order
	q := r.db.WithContext(ctx).
		Where("driver_id = ? AND status = ?", driverID, entity.OrderDelivered).
		Order("delivered_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *GormOrderRepo) CountDeliveredOrdersForDriver(ctx context.Context, driverID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Order{}).
		Where("driver_id = ? AND status = ?", driverID, entity.OrderDelivered).
		Count(&count).Error
	return count, err
}

func (r *GormOrderRepo) ListActiveOrdersForCustomer(ctx context.Context, customerID uuid.UUID) ([]entity.Order, error) {
	var list []entity.Order
	err := r.db.WithContext(ctx).Preload("VendorOrders.Items").
		Where("customer_id = ? AND status NOT IN (?, ?)", customerID, entity.OrderDelivered, entity.OrderCancelled).
		Order("updated_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
