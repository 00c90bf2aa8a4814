package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sevabazar/delivery-backend/dispatch"
)

type DispatchHandler struct{ svc dispatch.Service }

func NewDispatchHandler(s dispatch.Service) *DispatchHandler { return &DispatchHandler{svc: s} }

type dispatchPayload struct {
	OrderID string `json:"order_id" binding:"required"`
}

// Dispatch fans offers out to eligible drivers near the order's pickup.
func (h *DispatchHandler) Dispatch() gin.HandlerFunc {
	return func(c *gin.Context) {
		var p dispatchPayload
		if err := c.ShouldBindJSON(&p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload", "detail": err.Error()})
			return
		}
		id, err := uuid.Parse(p.OrderID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order_id"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()
		notified, err := h.svc.Dispatch(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"notified_drivers": notified, "count": len(notified)})
	}
}

// AcceptOffer is called by the driver taking the job.
// POST /api/v1/offers/:order_id/accept
func (h *DispatchHandler) AcceptOffer() gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID, ok := contextUUID(c, "driver_id")
		if !ok {
			return
		}
		orderID, ok := pathUUID(c, "order_id")
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()
		job, err := h.svc.AcceptOffer(ctx, orderID, driverID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"order_id":   job.JobID(),
			"order_kind": job.JobKind(),
			"status":     job.LifecycleStatus(),
			"earning":    job.QuotedDriverFee(),
		})
	}
}

// RejectOffer declines a pending offer.
// POST /api/v1/offers/:order_id/reject
func (h *DispatchHandler) RejectOffer() gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID, ok := contextUUID(c, "driver_id")
		if !ok {
			return
		}
		orderID, ok := pathUUID(c, "order_id")
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		if err := h.svc.RejectOffer(ctx, orderID, driverID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "offer rejected"})
	}
}
