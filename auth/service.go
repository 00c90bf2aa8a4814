package auth

import (
	"context"
)

// LoginRequest supports three modes: firebase_uid (phone-verified frontends),
// bare phone, or phone+password for admins. One identifier must be provided.
type LoginRequest struct {
	Phone       string
	FirebaseUID string
	Password    string
}

// SignupCustomerRequest creates a base user plus customer profile. The
// frontend completes Firebase phone verification and supplies the UID.
type SignupCustomerRequest struct {
	FirstName   string
	LastName    string
	Phone       string
	FirebaseUID string
}

// Principal is the authenticated identity returned to clients.
type Principal struct {
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	// Profile id matching the role.
	DriverID   string `json:"driver_id,omitempty"`
	CustomerID string `json:"customer_id,omitempty"`
	AdminID    string `json:"admin_id,omitempty"`

	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Service provides login and signup. Driver signup lives in the driver
// service; admins are seeded out of band and log in with a password.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*Principal, error)
	Refresh(ctx context.Context, refreshToken string) (*Principal, error)
	SignupCustomer(ctx context.Context, req SignupCustomerRequest) (*Principal, error)
}
