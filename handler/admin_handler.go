package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	driverSvc "github.com/sevabazar/delivery-backend/driver"
	"github.com/sevabazar/delivery-backend/entity"
	"github.com/sevabazar/delivery-backend/settings"
	"github.com/sevabazar/delivery-backend/settlement"
)

// AdminHandler bundles the administrative operations: pricing/dispatch
// configuration, driver approval and floating-cash clearing.
type AdminHandler struct {
	settings settings.Repository
	drivers  driverSvc.Service
	settle   *settlement.Service
}

func NewAdminHandler(settingsRepo settings.Repository, drivers driverSvc.Service, settle *settlement.Service) *AdminHandler {
	return &AdminHandler{settings: settingsRepo, drivers: drivers, settle: settle}
}

// GetSettings returns the current configuration, creating defaults if absent.
func (h *AdminHandler) GetSettings() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		s, err := h.settings.Get(ctx)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, s)
	}
}

type updateSettingsPayload struct {
	VendorVisibilityRadiusKm float64                   `json:"vendor_visibility_radius_km" binding:"required"`
	DriverSearchRadiusKm     float64                   `json:"driver_search_radius_km" binding:"required"`
	DeliveryChargeTiers      []entity.PricingTier      `json:"delivery_charge_tiers"`
	DriverPaymentTiers       []entity.PricingTier      `json:"driver_payment_tiers"`
	DriverPayoutMode         string                    `json:"driver_payout_mode"`
	DriverDeliveryFee        entity.DeliveryFeeFormula `json:"driver_delivery_fee"`
}

// UpdateSettings replaces the recognized configuration options.
func (h *AdminHandler) UpdateSettings() gin.HandlerFunc {
	return func(c *gin.Context) {
		var p updateSettingsPayload
		if err := c.ShouldBindJSON(&p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload", "detail": err.Error()})
			return
		}
		mode := entity.PayoutMode(p.DriverPayoutMode)
		switch mode {
		case entity.PayoutTiered, entity.PayoutFormula:
		case "":
			mode = entity.PayoutTiered
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "driver_payout_mode must be 'tiered' or 'formula'"})
			return
		}
		next := &entity.Settings{
			VendorVisibilityRadiusKm: p.VendorVisibilityRadiusKm,
			DriverSearchRadiusKm:     p.DriverSearchRadiusKm,
			DeliveryChargeTiers:      p.DeliveryChargeTiers,
			DriverPaymentTiers:       p.DriverPaymentTiers,
			DriverPayoutMode:         mode,
			DriverDeliveryFee:        p.DriverDeliveryFee,
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		updated, err := h.settings.Update(ctx, next)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

// ApproveDriver lifts the suspension gate so the driver can receive offers.
// POST /api/v1/admin/drivers/:driver_id/approve
func (h *AdminHandler) ApproveDriver() gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID, ok := pathUUID(c, "driver_id")
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		if err := h.drivers.Approve(ctx, driverID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "driver approved"})
	}
}

// SuspendDriver blocks the driver from future offers.
// POST /api/v1/admin/drivers/:driver_id/suspend
func (h *AdminHandler) SuspendDriver() gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID, ok := pathUUID(c, "driver_id")
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		if err := h.drivers.Suspend(ctx, driverID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "driver suspended"})
	}
}

// ClearFloatingCash settles all pending cash-on-delivery money the driver has
// handed over at the office.
// POST /api/v1/admin/drivers/:driver_id/clear-floating-cash
func (h *AdminHandler) ClearFloatingCash() gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID, ok := pathUUID(c, "driver_id")
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()
		total, err := h.settle.ClearFloatingCash(ctx, driverID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"cleared_amount": total})
	}
}

// WalletOf lets an admin inspect any driver's settlement standing.
// GET /api/v1/admin/drivers/:driver_id/wallet
func (h *AdminHandler) WalletOf() gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID, ok := pathUUID(c, "driver_id")
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
