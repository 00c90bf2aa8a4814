package service

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sevabazar/delivery-backend/apperr"
	authpkg "github.com/sevabazar/delivery-backend/auth"
	"github.com/sevabazar/delivery-backend/entity"
)

const (
	accessTTL  = 24 * time.Hour
	refreshTTL = 7 * 24 * time.Hour
)

type authService struct {
	repo authpkg.Repository
}

func NewAuthService(repo authpkg.Repository) authpkg.Service {
	return &authService{repo: repo}
}

func (s *authService) Login(ctx context.Context, req authpkg.LoginRequest) (*authpkg.Principal, error) {
	if req.FirebaseUID == "" && req.Phone == "" {
		return nil, apperr.InvalidInput("missing_identifier", "either firebase_uid or phone is required")
	}

	var user *entity.User
	var err error
	if req.FirebaseUID != "" {
		user, err = s.repo.GetUserByFirebaseUID(ctx, req.FirebaseUID)
	} else {
		user, err = s.repo.GetUserByPhone(ctx, req.Phone)
	}
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, apperr.Unauthorized("invalid_credentials", "no account for the given identifier")
		}
		return nil, err
	}

	// Admins carry a password; phone-based roles are verified by Firebase on
	// the frontend.
	if user.Role == "admin" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			return nil, apperr.Unauthorized("invalid_credentials", "wrong password")
		}
	}

	return s.issue(ctx, user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*authpkg.Principal, error) {
	secret := jwtSecret()
	claims, err := authpkg.ParseAndValidate(secret, refreshToken)
	if err != nil || claims.TokenType != authpkg.TokenRefresh {
		return nil, apperr.Unauthorized("invalid_refresh_token", "refresh token is invalid or expired")
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, apperr.Unauthorized("invalid_refresh_token", "refresh token subject is malformed")
	}
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, apperr.Unauthorized("invalid_refresh_token", "user behind token no longer exists")
	}
	return s.issue(ctx, user)
}

func (s *authService) SignupCustomer(ctx context.Context, req authpkg.SignupCustomerRequest) (*authpkg.Principal, error) {
	if req.Phone == "" {
		return nil, apperr.InvalidInput("missing_phone", "phone is required")
	}
	if _, err := s.repo.GetUserByPhone(ctx, req.Phone); err == nil {
		return nil, apperr.Conflict("phone_taken", "an account with this phone already exists")
	} else if !apperr.IsKind(err, apperr.KindNotFound) {
		return nil, err
	}

	user := &entity.User{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Phone:         req.Phone,
		PhoneVerified: req.FirebaseUID != "",
		Role:          "customer",
	}
	if req.FirebaseUID != "" {
		uid := req.FirebaseUID
		user.FirebaseUID = &uid
	}
	customer := &entity.Customer{Active: true}
	if err := s.repo.CreateCustomer(ctx, user, customer); err != nil {
		return nil, err
	}
	return s.issue(ctx, user)
}

// issue builds the principal with role-specific profile id and signs tokens.
func (s *authService) issue(ctx context.Context, user *entity.User) (*authpkg.Principal, error) {
	p := &authpkg.Principal{
		UserID:    user.ID.String(),
		Role:      user.Role,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Phone:     user.Phone,
	}
	switch user.Role {
	case "driver":
		if d, err := s.repo.GetDriverByUserID(ctx, user.ID); err == nil {
			p.DriverID = d.ID.String()
		}
	case "customer":
		if c, err := s.repo.GetCustomerByUserID(ctx, user.ID); err == nil {
			p.CustomerID = c.ID.String()
		}
	case "admin":
		if a, err := s.repo.GetAdminByUserID(ctx, user.ID); err == nil {
			p.AdminID = a.ID.String()
		}
	}

	access, refresh, err := authpkg.IssueTokenPair(jwtSecret(), p, accessTTL, refreshTTL)
	if err != nil {
		return nil, err
	}
	p.Token = access
	p.RefreshToken = refresh
	return p, nil
}

func jwtSecret() string {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-insecure-secret-change-me"
	}
	return secret
}
