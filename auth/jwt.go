package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenKind distinguishes the short-lived access token from the long-lived
// refresh token. The kind rides in the claims so each endpoint can insist on
// the right one.
type TokenKind string

const (
	TokenAccess  TokenKind = "access"
	TokenRefresh TokenKind = "refresh"
)

const tokenIssuer = "sevabazar-delivery"

// ErrInvalidToken covers tokens that fail signature, expiry or shape checks.
var ErrInvalidToken = errors.New("token is invalid or expired")

// Claims is the token payload: the user, their role, and the profile id that
// role carries.
type Claims struct {
	UserID     string    `json:"user_id"`
	Role       string    `json:"role"`
	DriverID   string    `json:"driver_id,omitempty"`
	CustomerID string    `json:"customer_id,omitempty"`
	AdminID    string    `json:"admin_id,omitempty"`
	TokenType  TokenKind `json:"token_type"`
	jwt.RegisteredClaims
}

// SignJWT issues an HS256 token of the given kind for the principal. Only the
// profile id matching the principal's role is embedded.
func SignJWT(secret string, p *Principal, ttl time.Duration, kind TokenKind) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:    p.UserID,
		Role:      p.Role,
		TokenType: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	switch p.Role {
	case "driver":
		claims.DriverID = p.DriverID
	case "customer":
		claims.CustomerID = p.CustomerID
	case "admin":
		claims.AdminID = p.AdminID
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// IssueTokenPair signs the access and refresh tokens for a principal in one go.
func IssueTokenPair(secret string, p *Principal, accessTTL, refreshTTL time.Duration) (access, refresh string, err error) {
	if access, err = SignJWT(secret, p, accessTTL, TokenAccess); err != nil {
		return "", "", err
	}
	if refresh, err = SignJWT(secret, p, refreshTTL, TokenRefresh); err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// ParseAndValidate checks signature, algorithm and expiry and returns the
// embedded claims. Only HS256 tokens are accepted.
func ParseAndValidate(secret, raw string) (*Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
