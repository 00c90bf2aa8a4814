package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	authpkg "github.com/sevabazar/delivery-backend/auth"
)

type AuthHandler struct {
	service authpkg.Service
}

func NewAuthHandler(svc authpkg.Service) *AuthHandler { return &AuthHandler{service: svc} }

type loginPayload struct {
	Phone       string `json:"phone"`
	FirebaseUID string `json:"firebase_uid"`
	Password    string `json:"password"`
}

func (h *AuthHandler) Login() gin.HandlerFunc {
	return func(c *gin.Context) {
		var p loginPayload
		if err := c.ShouldBindJSON(&p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload", "detail": err.Error()})
			return
		}
		if p.FirebaseUID == "" && p.Phone == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "either firebase_uid or phone is required"})
			return
		}
		req := authpkg.LoginRequest{Phone: p.Phone, FirebaseUID: p.FirebaseUID, Password: p.Password}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()
		principal, err := h.service.Login(ctx, req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"principal": principal})
	}
}

type refreshPayload struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h *AuthHandler) Refresh() gin.HandlerFunc {
	return func(c *gin.Context) {
		var p refreshPayload
		if err := c.ShouldBindJSON(&p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload", "detail": err.Error()})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()
		principal, err := h.service.Refresh(ctx, p.RefreshToken)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"principal": principal})
	}
}

type signupCustomerPayload struct {
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name" binding:"required"`
	Phone       string `json:"phone" binding:"required"`
	FirebaseUID string `json:"firebase_uid"` // provided by frontend after Firebase phone auth
}

func (h *AuthHandler) SignupCustomer() gin.HandlerFunc {
	return func(c *gin.Context) {
		var p signupCustomerPayload
		if err := c.ShouldBindJSON(&p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload", "detail": err.Error()})
			return
		}
		// Prefer the uid the Firebase middleware verified, when it ran.
		uid := c.GetString("firebase_uid")
		if uid == "" {
			uid = p.FirebaseUID
		}
		req := authpkg.SignupCustomerRequest{
			FirstName:   p.FirstName,
			LastName:    p.LastName,
			Phone:       p.Phone,
			FirebaseUID: uid,
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()
		principal, err := h.service.SignupCustomer(ctx, req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"principal": principal})
	}
}
