package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sevabazar/delivery-backend/entity"
	orderpkg "github.com/sevabazar/delivery-backend/order"
)

type OrderHandler struct {
	service orderpkg.Service
}

func NewOrderHandler(svc orderpkg.Service) *OrderHandler { return &OrderHandler{service: svc} }

type createItemPayload struct {
	Name      string  `json:"name" binding:"required"`
	ImageURL  string  `json:"image_url"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type createVendorOrderPayload struct {
	VendorID string              `json:"vendor_id" binding:"required"`
	Items    []createItemPayload `json:"items" binding:"required"`
}

type createOrderPayload struct {
	VendorOrders    []createVendorOrderPayload `json:"vendor_orders" binding:"required"`
	ShippingAddress string                     `json:"shipping_address" binding:"required"`
	ShippingLat     *float64                   `json:"shipping_lat"`
	ShippingLng     *float64                   `json:"shipping_lng"`
	PaymentStatus   string                     `json:"payment_status"` // "paid" or "unpaid" (default)
}

// CreateOrder creates a regular marketplace order for the authenticated customer.
func (h *OrderHandler) CreateOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		customerID, ok := contextUUID(c, "customer_id")
		if !ok {
			return
		}
		var p createOrderPayload
		if err := c.ShouldBindJSON(&p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload", "detail": err.Error()})
			return
		}
		req := orderpkg.CreateOrderRequest{
			CustomerID:      customerID,
			ShippingAddress: p.ShippingAddress,
			ShippingLat:     p.ShippingLat,
			ShippingLng:     p.ShippingLng,
			PaymentStatus:   entity.PaymentStatus(p.PaymentStatus),
		}
		for _, vo := range p.VendorOrders {
			vendorID, err := uuid.Parse(vo.VendorID)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vendor_id"})
				return
			}
			slice := orderpkg.CreateVendorOrder{VendorID: vendorID}
			for _, it := range vo.Items {
				slice.Items = append(slice.Items, orderpkg.CreateItem{
					Name:      it.Name,
					ImageURL:  it.ImageURL,
					Quantity:  it.Quantity,
					UnitPrice: it.UnitPrice,
				})
			}
			req.VendorOrders = append(req.VendorOrders, slice)
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()
		created, err := h.service.CreateOrder(ctx, req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"order": created})
	}
}

type createInformalOrderPayload struct {
	VendorID        string   `json:"vendor_id" binding:"required"`
	Description     string   `json:"description" binding:"required"`
	Amount          float64  `json:"amount"`
	ShippingAddress string   `json:"shipping_address" binding:"required"`
	ShippingLat     *float64 `json:"shipping_lat"`
	ShippingLng     *float64 `json:"shipping_lng"`
	PaymentStatus   string   `json:"payment_status"`
}

// CreateInformalOrder creates a chat order (free-text item list).
func (h *OrderHandler) CreateInformalOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		customerID, ok := contextUUID(c, "customer_id")
		if !ok {
			return
		}
		var p createInformalOrderPayload
		if err := c.ShouldBindJSON(&p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload", "detail": err.Error()})
			return
		}
		vendorID, err := uuid.Parse(p.VendorID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vendor_id"})
			return
		}
		req := orderpkg.CreateInformalOrderRequest{
			CustomerID:      customerID,
			VendorID:        vendorID,
			Description:     p.Description,
			Amount:          p.Amount,
			ShippingAddress: p.ShippingAddress,
			ShippingLat:     p.ShippingLat,
			ShippingLng:     p.ShippingLng,
			PaymentStatus:   entity.PaymentStatus(p.PaymentStatus),
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()
		created, err := h.service.CreateInformalOrder(ctx, req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"order": created})
	}
}

type otpPayload struct {
	OTP string `json:"otp" binding:"required"`
}

// VerifyPickup is called by the assigned driver at the vendor hand-off.
// POST /api/v1/orders/:order_id/pickup
func (h *OrderHandler) VerifyPickup() gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID, ok := contextUUID(c, "driver_id")
		if !ok {
			return
		}
		orderID, ok := pathUUID(c, "order_id")
		if !ok {
			return
		}
		var p otpPayload
		if err := c.ShouldBindJSON(&p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload", "detail": err.Error()})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()
		job, err := h.service.VerifyPickup(ctx, orderID, driverID, p.OTP)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"order_id":     job.JobID(),
			"status":       job.LifecycleStatus(),
			"delivery_otp": job.DeliveryCode(),
		})
	}
}

// CompleteDelivery is called by the assigned driver at the drop-off.
// POST /api/v1/orders/:order_id/deliver
func (h *OrderHandler) CompleteDelivery() gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID, ok := contextUUID(c, "driver_id")
		if !ok {
			return
		}
		orderID, ok := pathUUID(c, "order_id")
		if !ok {
			return
		}
		var p otpPayload
		if err := c.ShouldBindJSON(&p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload", "detail": err.Error()})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()
		job, err := h.service.CompleteDelivery(ctx, orderID, driverID, p.OTP)
		if err != nil {
			respondError(c, err)
			return
		}
		earning, _ := job.Earning()
		c.JSON(http.StatusOK, gin.H{
			"order_id": job.JobID(),
			"status":   job.LifecycleStatus(),
			"earning":  earning,
		})
	}
}

// Cancel moves a non-terminal order to cancelled (admin action).
// POST /api/v1/orders/:order_id/cancel
func (h *OrderHandler) Cancel() gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, ok := pathUUID(c, "order_id")
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()
		job, err := h.service.Cancel(ctx, orderID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"order_id": job.JobID(), "status": job.LifecycleStatus()})
	}
}

type vendorOrderStatusPayload struct {
	Status string `json:"status" binding:"required"`
}

// UpdateVendorOrderStatus lets a vendor move their slice of an order.
// PUT /api/v1/vendor-orders/:id/status
func (h *OrderHandler) UpdateVendorOrderStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathUUID(c, "id")
		if !ok {
			return
		}
		var p vendorOrderStatusPayload
		if err := c.ShouldBindJSON(&p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload", "detail": err.Error()})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		if err := h.service.UpdateVendorOrderStatus(ctx, id, entity.OrderStatus(p.Status)); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "status updated"})
	}
}

// ActiveForCustomer lists the customer's in-flight orders.
// GET /api/v1/customers/me/orders/active
func (h *OrderHandler) ActiveForCustomer() gin.HandlerFunc {
	return func(c *gin.Context) {
		customerID, ok := contextUUID(c, "customer_id")
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()
		list, err := h.service.ListActiveForCustomer(ctx, customerID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": list})
	}
}
