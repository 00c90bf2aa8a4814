package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sevabazar/delivery-backend/apperr"
	authpkg "github.com/sevabazar/delivery-backend/auth"
	"github.com/sevabazar/delivery-backend/entity"
)

type GormAuthRepo struct {
	db *gorm.DB
}

func NewGormAuthRepo(db *gorm.DB) authpkg.Repository {
	return &GormAuthRepo{db: db}
}

func (r *GormAuthRepo) GetUserByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err, "user_not_found")
	}
	return &u, nil
}

func (r *GormAuthRepo) GetUserByPhone(ctx context.Context, phone string) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&u).Error; err != nil {
		return nil, mapNotFound(err, "user_not_found")
	}
	return &u, nil
}

func (r *GormAuthRepo) GetUserByFirebaseUID(ctx context.Context, uid string) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where("firebase_uid = ?", uid).First(&u).Error; err != nil {
		return nil, mapNotFound(err, "user_not_found")
	}
	return &u, nil
}

func (r *GormAuthRepo) GetDriverByUserID(ctx context.Context, userID uuid.UUID) (*entity.Driver, error) {
	var d entity.Driver
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&d).Error; err != nil {
		return nil, mapNotFound(err, "driver_not_found")
	}
	return &d, nil
}

func (r *GormAuthRepo) GetCustomerByUserID(ctx context.Context, userID uuid.UUID) (*entity.Customer, error) {
	var c entity.Customer
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&c).Error; err != nil {
		return nil, mapNotFound(err, "customer_not_found")
	}
	return &c, nil
}

func (r *GormAuthRepo) GetAdminByUserID(ctx context.Context, userID uuid.UUID) (*entity.Admin, error) {
	var a entity.Admin
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&a).Error; err != nil {
		return nil, mapNotFound(err, "admin_not_found")
	}
	return &a, nil
}

func (r *GormAuthRepo) CreateCustomer(ctx context.Context, user *entity.User, customer *entity.Customer) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		customer.UserID = user.ID
		return tx.Create(customer).Error
	})
}

func mapNotFound(err error, code string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(code, "record does not exist")
	}
	return err
}
