package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sevabazar/delivery-backend/geo"
	"github.com/sevabazar/delivery-backend/settings"
	"github.com/sevabazar/delivery-backend/vendors"
)

type VendorHandler struct {
	vendors  vendors.Repository
	settings settings.Repository
}

func NewVendorHandler(repo vendors.Repository, settingsRepo settings.Repository) *VendorHandler {
	return &VendorHandler{vendors: repo, settings: settingsRepo}
}

// ListVisible returns active vendors within the configured visibility radius
// of the caller's position.
// GET /api/v1/vendors/visible?lat=..&lng=..
func (h *VendorHandler) ListVisible() gin.HandlerFunc {
	return func(c *gin.Context) {
		lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
		lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
		if errLat != nil || errLng != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng query params are required"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		cfg, err := h.settings.Get(ctx)
		if err != nil {
			respondError(c, err)
			return
		}
		list, err := h.vendors.ListVisible(ctx, geo.Point{Lat: lat, Lng: lng}, cfg.VendorVisibilityRadiusKm)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"vendors": list})
	}
}
