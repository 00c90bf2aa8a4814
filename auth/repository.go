package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/sevabazar/delivery-backend/entity"
)

// Repository exposes the lookups and writes used for authentication.
type Repository interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetUserByPhone(ctx context.Context, phone string) (*entity.User, error)
	GetUserByFirebaseUID(ctx context.Context, uid string) (*entity.User, error)

	GetDriverByUserID(ctx context.Context, userID uuid.UUID) (*entity.Driver, error)
	GetCustomerByUserID(ctx context.Context, userID uuid.UUID) (*entity.Customer, error)
	GetAdminByUserID(ctx context.Context, userID uuid.UUID) (*entity.Admin, error)

	// CreateCustomer persists the user and customer profile together.
	CreateCustomer(ctx context.Context, user *entity.User, customer *entity.Customer) error
}
