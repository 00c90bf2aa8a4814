package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	driverSvc "github.com/sevabazar/delivery-backend/driver"
	"github.com/sevabazar/delivery-backend/entity"
	"github.com/sevabazar/delivery-backend/offer"
	orderpkg "github.com/sevabazar/delivery-backend/order"
	"github.com/sevabazar/delivery-backend/settlement"
)

// DriverHandler bundles dependencies for driver-facing HTTP handlers.
type DriverHandler struct {
	service driverSvc.Service
	offers  offer.Repository
	orders  orderpkg.Service
	settle  *settlement.Service
}

func NewDriverHandler(svc driverSvc.Service, offers offer.Repository, orders orderpkg.Service, settle *settlement.Service) *DriverHandler {
	return &DriverHandler{service: svc, offers: offers, orders: orders, settle: settle}
}

// payload for POST /api/v1/drivers/register
type registerDriverPayload struct {
	FirstName      string `json:"first_name" binding:"required"`
	LastName       string `json:"last_name" binding:"required"`
	Phone          string `json:"phone" binding:"required"`
	PrimaryVehicle string `json:"primary_vehicle"`
	VehicleDetails string `json:"vehicle_details"`
	DeviceToken    string `json:"device_token"`
	FirebaseUID    string `json:"firebase_uid"` // provided by frontend after Firebase auth
}

// Register creates the user plus driver profile. New drivers start suspended
// until an admin approves them.
func (h *DriverHandler) Register() gin.HandlerFunc {
	return func(c *gin.Context) {
		var p registerDriverPayload
		if err := c.ShouldBindJSON(&p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload", "detail": err.Error()})
			return
		}
		uid := c.GetString("firebase_uid")
		if uid == "" {
			uid = p.FirebaseUID
		}
		req := driverSvc.RegisterDriverRequest{
			FirstName:      p.FirstName,
			LastName:       p.LastName,
			Phone:          p.Phone,
			FirebaseUID:    uid,
			PrimaryVehicle: entity.VehicleType(p.PrimaryVehicle),
			VehicleDetails: p.VehicleDetails,
			DeviceToken:    p.DeviceToken,
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()
		created, err := h.service.Register(ctx, req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message": "driver created; awaiting admin approval",
			"driver": gin.H{
				"id":              created.ID,
				"user_id":         created.UserID,
				"approval_status": created.ApprovalStatus,
				"primary_vehicle": created.PrimaryVehicle,
			},
		})
	}
}

type availabilityPayload struct {
	Online *bool `json:"online" binding:"required"`
}

// SetAvailability toggles the online flag for the authenticated driver.
func (h *DriverHandler) SetAvailability() gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID, ok := contextUUID(c, "driver_id")
		if !ok {
			return
		}
		var p availabilityPayload
		if err := c.ShouldBindJSON(&p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload", "detail": err.Error()})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		if err := h.service.SetOnline(ctx, driverID, *p.Online); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"online": *p.Online})
	}
}

type locationPayload struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// UpdateLocation stores the driver's last reported position.
func (h *DriverHandler) UpdateLocation() gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID, ok := contextUUID(c, "driver_id")
		if !ok {
			return
		}
		var p locationPayload
		if err := c.ShouldBindJSON(&p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload", "detail": err.Error()})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		if err := h.service.UpdateLocation(ctx, driverID, p.Latitude, p.Longitude); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "location updated"})
	}
}

type deviceTokenPayload struct {
	DeviceToken string `json:"device_token" binding:"required"`
}

// UpdateDeviceToken stores the FCM token for offer pushes.
func (h *DriverHandler) UpdateDeviceToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID, ok := contextUUID(c, "driver_id")
		if !ok {
			return
		}
		var p deviceTokenPayload
		if err := c.ShouldBindJSON(&p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload", "detail": err.Error()})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		if err := h.service.UpdateDeviceToken(ctx, driverID, p.DeviceToken); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "device token updated"})
	}
}

// Wallet reports cleared balance, floating cash and overdue standing.
func (h *DriverHandler) Wallet() gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID, ok := contextUUID(c, "driver_id")
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()
		sum, err := h.settle.WalletSummary(ctx, driverID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, sum)
	}
}

// ActiveOffers lists the driver's pending, unexpired offers, newest first.
func (h *DriverHandler) ActiveOffers() gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID, ok := contextUUID(c, "driver_id")
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		offers, err := h.offers.ActiveForDriver(ctx, driverID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"offers": offers})
	}
}

// DeliveredHistory returns the driver's delivered orders, newest first.
// GET /api/v1/drivers/me/deliveries?limit=20&offset=0
func (h *DriverHandler) DeliveredHistory() gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID, ok := contextUUID(c, "driver_id")
		if !ok {
			return
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		if limit < 1 || limit > 100 {
			limit = 20
		}
		if offset < 0 {
			offset = 0
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()
		list, total, err := h.orders.ListDeliveredForDriver(ctx, driverID, limit, offset)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": list, "total": total, "limit": limit, "offset": offset})
	}
}
