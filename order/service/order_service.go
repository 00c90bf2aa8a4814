package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/sevabazar/delivery-backend/apperr"
	"github.com/sevabazar/delivery-backend/driver"
	"github.com/sevabazar/delivery-backend/entity"
	"github.com/sevabazar/delivery-backend/events"
	"github.com/sevabazar/delivery-backend/geo"
	orderpkg "github.com/sevabazar/delivery-backend/order"
	"github.com/sevabazar/delivery-backend/pricing"
	"github.com/sevabazar/delivery-backend/realtime"
	"github.com/sevabazar/delivery-backend/settings"
	"github.com/sevabazar/delivery-backend/settlement"
	"github.com/sevabazar/delivery-backend/vendors"
)

// estimatedArrivalWindow is the fixed ETA window set at pickup verification.
const estimatedArrivalWindow = 15 * time.Minute

type orderService struct {
	repo      orderpkg.Repository
	drivers   driver.Repository
	vendors   vendors.Repository
	settings  settings.Repository
	settle    *settlement.Service
	hub       *realtime.Hub
	producer  *events.Producer
	now       func() time.Time
}

// NewOrderService wires the lifecycle over its collaborators. hub and producer
// may be nil; notifications and events are best-effort.
func NewOrderService(
	repo orderpkg.Repository,
	drivers driver.Repository,
	vendorRepo vendors.Repository,
	settingsRepo settings.Repository,
	settle *settlement.Service,
	hub *realtime.Hub,
	producer *events.Producer,
) orderpkg.Service {
	return &orderService{
		repo:     repo,
		drivers:  drivers,
		vendors:  vendorRepo,
		settings: settingsRepo,
		settle:   settle,
		hub:      hub,
		producer: producer,
		now:      time.Now,
	}
}

// WithClock overrides the time source for deterministic tests.
func (s *orderService) WithClock(now func() time.Time) orderpkg.Service {
	s.now = now
	return s
}

func (s *orderService) CreateOrder(ctx context.Context, req orderpkg.CreateOrderRequest) (*entity.Order, error) {
	if len(req.VendorOrders) == 0 {
		return nil, apperr.InvalidInput("no_vendor_orders", "order needs at least one vendor slice")
	}
	for _, vo := range req.VendorOrders {
		if len(vo.Items) == 0 {
			return nil, apperr.InvalidInput("empty_vendor_order", "vendor slice needs at least one item")
		}
	}

	payment := req.PaymentStatus
	if payment == "" {
		payment = entity.PaymentUnpaid
	}

	o := &entity.Order{
		CustomerID:      req.CustomerID,
		ShippingAddress: req.ShippingAddress,
		ShippingLat:     req.ShippingLat,
		ShippingLng:     req.ShippingLng,
		PaymentStatus:   payment,
		PickupOTP:       generateOTP(),
		Status:          entity.OrderPending,
	}
	for _, vo := range req.VendorOrders {
		sub := entity.VendorOrder{VendorID: vo.VendorID, Status: entity.OrderPending}
		for _, it := range vo.Items {
			qty := it.Quantity
			if qty < 1 {
				qty = 1
			}
			sub.Items = append(sub.Items, entity.OrderItem{
				Name:      it.Name,
				ImageURL:  it.ImageURL,
				Quantity:  qty,
				UnitPrice: it.UnitPrice,
				Total:     pricing.Round2(float64(qty) * it.UnitPrice),
			})
		}
		o.VendorOrders = append(o.VendorOrders, sub)
	}

	o.DeliveryFee = s.deliveryFee(ctx, req.VendorOrders[0].VendorID, req.ShippingLat, req.ShippingLng)

	created, err := s.repo.CreateOrder(ctx, o)
	if err != nil {
		return nil, err
	}
	s.publish("order.created", orderpkg.RegularJob{Order: created})
	return created, nil
}

func (s *orderService) CreateInformalOrder(ctx context.Context, req orderpkg.CreateInformalOrderRequest) (*entity.InformalOrder, error) {
	if req.Description == "" {
		return nil, apperr.InvalidInput("missing_description", "informal order needs a description")
	}

	payment := req.PaymentStatus
	if payment == "" {
		payment = entity.PaymentUnpaid
	}

	o := &entity.InformalOrder{
		CustomerID:      req.CustomerID,
		VendorID:        req.VendorID,
		Description:     req.Description,
		Amount:          pricing.Round2(req.Amount),
		ShippingAddress: req.ShippingAddress,
		ShippingLat:     req.ShippingLat,
		ShippingLng:     req.ShippingLng,
		PaymentStatus:   payment,
		PickupOTP:       generateOTP(),
		Status:          entity.OrderPending,
	}
	o.DeliveryFee = s.deliveryFee(ctx, req.VendorID, req.ShippingLat, req.ShippingLng)

	created, err := s.repo.CreateInformalOrder(ctx, o)
	if err != nil {
		return nil, err
	}
	s.publish("order.created", orderpkg.InformalJob{Order: created})
	return created, nil
}

// deliveryFee prices the customer charge from the vendor's stored location to
// the shipping point. A missing coordinate on either side prices as zero
// distance, which lands on the first tier or the formula base pay.
func (s *orderService) deliveryFee(ctx context.Context, vendorID uuid.UUID, lat, lng *float64) float64 {
	cfg, err := s.settings.Get(ctx)
	if err != nil {
		cfg = entity.DefaultSettings()
	}
	var distance float64
	if lat != nil && lng != nil {
		if v, err := s.vendors.GetByID(ctx, vendorID); err == nil && v.Latitude != nil && v.Longitude != nil {
			distance = geo.DistanceKm(
				geo.Point{Lat: *v.Latitude, Lng: *v.Longitude},
				geo.Point{Lat: *lat, Lng: *lng},
			)
		}
	}
	return pricing.CustomerDeliveryFee(distance, cfg)
}

func (s *orderService) VerifyPickup(ctx context.Context, orderID, driverID uuid.UUID, otp string) (orderpkg.DeliveryJob, error) {
	job, err := s.repo.ResolveJob(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := guardDriver(job, driverID); err != nil {
		return nil, err
	}
	if job.PickupCode() == "" || job.PickupCode() != otp {
		return nil, apperr.Unauthorized("otp_mismatch", "pickup code does not match")
	}

	deliveryOTP := generateOTP()
	eta := s.now().Add(estimatedArrivalWindow)
	if err := s.repo.MarkShipped(ctx, job.JobKind(), orderID, driverID, deliveryOTP, eta); err != nil {
		return nil, err
	}

	updated, err := s.repo.ResolveJob(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.notifyStatus(updated, eta)
	s.publish("order.shipped", updated)
	return updated, nil
}

func (s *orderService) CompleteDelivery(ctx context.Context, orderID, driverID uuid.UUID, otp string) (orderpkg.DeliveryJob, error) {
	job, err := s.repo.ResolveJob(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := guardDriver(job, driverID); err != nil {
		return nil, err
	}
	if job.DeliveryCode() == "" || job.DeliveryCode() != otp {
		return nil, apperr.Unauthorized("otp_mismatch", "delivery code does not match")
	}

	now := s.now()
	deliveredInMin := int(now.Sub(job.CreatedTime()).Minutes())
	// The shipped→delivered guard is the settlement gate: a second call loses
	// here and nothing downstream runs again.
	if err := s.repo.MarkDelivered(ctx, job.JobKind(), orderID, driverID, now, deliveredInMin); err != nil {
		return nil, err
	}

	if err := s.drivers.ClearAssignment(ctx, driverID, orderID); err != nil && !apperr.IsKind(err, apperr.KindConflict) {
		return nil, err
	}

	updated, err := s.repo.ResolveJob(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.settle.SettleDelivery(ctx, updated, driverID, updated.QuotedDriverFee()); err != nil && !apperr.IsKind(err, apperr.KindConflict) {
		return nil, err
	}

	s.notifyStatus(updated, time.Time{})
	s.publish("order.delivered", updated)
	return updated, nil
}

func (s *orderService) Cancel(ctx context.Context, orderID uuid.UUID) (orderpkg.DeliveryJob, error) {
	job, err := s.repo.ResolveJob(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Cancel(ctx, job.JobKind(), orderID); err != nil {
		return nil, err
	}
	if d := job.AssignedDriver(); d != nil {
		if err := s.drivers.ClearAssignment(ctx, *d, orderID); err != nil && !apperr.IsKind(err, apperr.KindConflict) {
			return nil, err
		}
	}

	updated, err := s.repo.ResolveJob(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.notifyStatus(updated, time.Time{})
	s.publish("order.cancelled", updated)
	return updated, nil
}

func (s *orderService) UpdateVendorOrderStatus(ctx context.Context, vendorOrderID uuid.UUID, status entity.OrderStatus) error {
	switch status {
	case entity.OrderPending, entity.OrderProcessing, entity.OrderShipped, entity.OrderDelivered, entity.OrderCancelled:
	default:
		return apperr.InvalidInput("bad_status", fmt.Sprintf("unknown status %q", status))
	}
	return s.repo.UpdateVendorOrderStatus(ctx, vendorOrderID, status)
}

func (s *orderService) ListDeliveredForDriver(ctx context.Context, driverID uuid.UUID, limit, offset int) ([]entity.Order, int64, error) {
	list, err := s.repo.ListDeliveredOrdersForDriver(ctx, driverID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	count, err := s.repo.CountDeliveredOrdersForDriver(ctx, driverID)
	if err != nil {
		return nil, 0, err
	}
	return list, count, nil
}

func (s *orderService) ListActiveForCustomer(ctx context.Context, customerID uuid.UUID) ([]entity.Order, error) {
	return s.repo.ListActiveOrdersForCustomer(ctx, customerID)
}

func guardDriver(job orderpkg.DeliveryJob, driverID uuid.UUID) error {
	assigned := job.AssignedDriver()
	if assigned == nil || *assigned != driverID {
		return apperr.Unauthorized("driver_mismatch", "driver is not assigned to this order")
	}
	return nil
}

func (s *orderService) notifyStatus(job orderpkg.DeliveryJob, eta time.Time) {
	if s.hub == nil {
		return
	}
	payload := realtime.OrderStatusPayload{
		OrderID: job.JobID().String(),
		Status:  string(job.LifecycleStatus()),
	}
	if !eta.IsZero() {
		payload.ETA = eta.Format(time.RFC3339)
	}
	_ = s.hub.NotifyCustomer(job.CustomerRef().String(), "order.status", payload)
}

func (s *orderService) publish(eventType string, job orderpkg.DeliveryJob) {
	ev := events.OrderEvent{
		Type:       eventType,
		OrderID:    job.JobID().String(),
		OrderKind:  string(job.JobKind()),
		CustomerID: job.CustomerRef().String(),
		Status:     string(job.LifecycleStatus()),
		OccurredAt: s.now(),
	}
	if d := job.AssignedDriver(); d != nil {
		ev.DriverID = d.String()
	}
	s.producer.Publish(ev)
}

// generateOTP returns a 4-digit single-use verification code.
func generateOTP() string {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "0000"
	}
	return fmt.Sprintf("%04d", n.Int64())
}
