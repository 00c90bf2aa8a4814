package dispatch

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/sevabazar/delivery-backend/apperr"
	"github.com/sevabazar/delivery-backend/driver"
	"github.com/sevabazar/delivery-backend/entity"
	"github.com/sevabazar/delivery-backend/events"
	"github.com/sevabazar/delivery-backend/geo"
	"github.com/sevabazar/delivery-backend/notify"
	"github.com/sevabazar/delivery-backend/offer"
	orderpkg "github.com/sevabazar/delivery-backend/order"
	"github.com/sevabazar/delivery-backend/pricing"
	"github.com/sevabazar/delivery-backend/realtime"
	"github.com/sevabazar/delivery-backend/settings"
	"github.com/sevabazar/delivery-backend/settlement"
	"github.com/sevabazar/delivery-backend/vendors"
)

// candidateLimit caps how many drivers one dispatch fans out to.
const candidateLimit = 50

// Service defines dispatching operations.
type Service interface {
	// Dispatch finds eligible drivers near the order's pickup, records one
	// offer per candidate and fans out notifications. It returns the driver
	// ids that received an offer; an unresolvable order or pickup yields an
	// empty list, not an error.
	Dispatch(ctx context.Context, orderID uuid.UUID) ([]uuid.UUID, error)

	// AcceptOffer is a driver taking the job: guarded offer acceptance, then
	// conditional capture of the driver and the order. Exactly one of several
	// concurrent acceptances can win; the rest get apperr.Conflict.
	AcceptOffer(ctx context.Context, orderID, driverID uuid.UUID) (orderpkg.DeliveryJob, error)

	// RejectOffer marks the driver's pending offer rejected.
	RejectOffer(ctx context.Context, orderID, driverID uuid.UUID) error

	// ExpireStaleOffers sweeps pending offers past TTL.
	ExpireStaleOffers(ctx context.Context) (int64, error)
}

type service struct {
	orders   orderpkg.Repository
	drivers  driver.Repository
	vendors  vendors.Repository
	offers   offer.Repository
	settings settings.Repository
	settle   *settlement.Service
	hub      *realtime.Hub
	notifier notify.Notifier
	producer *events.Producer
}

func New(
	orders orderpkg.Repository,
	drivers driver.Repository,
	vendorRepo vendors.Repository,
	offers offer.Repository,
	settingsRepo settings.Repository,
	settle *settlement.Service,
	hub *realtime.Hub,
	notifier notify.Notifier,
	producer *events.Producer,
) Service {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &service{
		orders:   orders,
		drivers:  drivers,
		vendors:  vendorRepo,
		offers:   offers,
		settings: settingsRepo,
		settle:   settle,
		hub:      hub,
		notifier: notifier,
		producer: producer,
	}
}

func (s *service) Dispatch(ctx context.Context, orderID uuid.UUID) ([]uuid.UUID, error) {
	job, err := s.orders.ResolveJob(ctx, orderID)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			log.Printf("dispatch: order %s not found; nothing to dispatch", orderID)
			return nil, nil
		}
		return nil, err
	}
	if job.LifecycleStatus() != entity.OrderPending {
		log.Printf("dispatch: order %s is %s; nothing to dispatch", orderID, job.LifecycleStatus())
		return nil, nil
	}

	pickupVendor, pickup, ok := s.resolvePickup(ctx, job)
	if !ok {
		log.Printf("dispatch: order %s has no resolvable pickup location", orderID)
		return nil, nil
	}
	drop, ok := job.Drop()
	if !ok {
		log.Printf("dispatch: order %s has no drop coordinates", orderID)
		return nil, nil
	}

	cfg, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	candidates, err := s.drivers.FindCandidates(ctx, pickup, cfg.DriverSearchRadiusKm, candidateLimit)
	if err != nil {
		return nil, err
	}

	notified := make([]uuid.UUID, 0, len(candidates))
	for _, cand := range candidates {
		// Per-candidate failures are isolated: one bad driver never blocks
		// the rest of the fan-out.
		overdue, err := s.settle.HasOverdue(ctx, cand.Driver.ID)
		if err != nil {
			log.Printf("dispatch: overdue check for driver %s failed: %v", cand.Driver.ID, err)
			continue
		}
		if overdue {
			continue
		}

		quote := pricing.DriverPayout(cand.Position, pickup, drop, cfg)
		rec, err := s.offers.RecordOffer(ctx, offer.RecordOfferParams{
			OrderID:          job.JobID(),
			OrderKind:        job.JobKind(),
			DriverID:         cand.Driver.ID,
			PickupDistanceKm: quote.PickupLegKm,
			TotalDistanceKm:  quote.TotalKm,
			Earning:          quote.Fee,
		})
		if err != nil {
			log.Printf("dispatch: record offer for driver %s failed: %v", cand.Driver.ID, err)
			continue
		}

		s.notifyCandidate(ctx, job, pickupVendor, pickup, drop, cand.Driver, rec)
		notified = append(notified, cand.Driver.ID)
	}
	return notified, nil
}

// resolvePickup prefers the vendor's stored location as the search origin.
func (s *service) resolvePickup(ctx context.Context, job orderpkg.DeliveryJob) (*entity.Vendor, geo.Point, bool) {
	vendorID := job.PickupVendor()
	if vendorID == uuid.Nil {
		return nil, geo.Point{}, false
	}
	v, err := s.vendors.GetByID(ctx, vendorID)
	if err != nil {
		return nil, geo.Point{}, false
	}
	if v.Latitude == nil || v.Longitude == nil {
		return nil, geo.Point{}, false
	}
	return v, geo.Point{Lat: *v.Latitude, Lng: *v.Longitude}, true
}

func (s *service) notifyCandidate(ctx context.Context, job orderpkg.DeliveryJob, v *entity.Vendor, pickup, drop geo.Point, d entity.Driver, rec *entity.Offer) {
	items := make([]realtime.ItemLine, 0, len(job.Items()))
	for _, it := range job.Items() {
		items = append(items, realtime.ItemLine{
			Name:     it.Name,
			ImageURL: it.ImageURL,
			Quantity: it.Quantity,
			Total:    it.Total,
		})
	}
	payload := realtime.OfferPayload{
		OfferID:         rec.ID.String(),
		OrderID:         job.JobID().String(),
		VendorName:      v.Name,
		VendorAddress:   v.Address,
		PickupLat:       pickup.Lat,
		PickupLng:       pickup.Lng,
		DropLat:         drop.Lat,
		DropLng:         drop.Lng,
		Items:           items,
		TotalPayable:    pricing.Round2(job.ItemsTotal() + job.ShippingFee()),
		Earning:         rec.Earning,
		TotalDistanceKm: rec.TotalDistanceKm,
	}

	if s.hub != nil {
		_ = s.hub.NotifyDriver(d.ID.String(), "offer.new", payload)
	}

	data := map[string]string{
		"offer_id":          rec.ID.String(),
		"order_id":          job.JobID().String(),
		"earning":           fmt.Sprintf("%.2f", rec.Earning),
		"total_distance_km": fmt.Sprintf("%.3f", rec.TotalDistanceKm),
	}
	title := "New delivery offer"
	body := fmt.Sprintf("%s: earn %.2f over %.1f km", v.Name, rec.Earning, rec.TotalDistanceKm)
	if err := s.notifier.Push(ctx, d.DeviceToken, title, body, data); err != nil {
		log.Printf("dispatch: push to driver %s failed: %v", d.ID, err)
	}
}

func (s *service) AcceptOffer(ctx context.Context, orderID, driverID uuid.UUID) (orderpkg.DeliveryJob, error) {
	off, err := s.offers.GetForPair(ctx, orderID, driverID)
	if err != nil {
		return nil, err
	}

	// Gate 1: the offer must still be pending and inside its TTL.
	if err := s.offers.Accept(ctx, off.ID); err != nil {
		return nil, err
	}
	// Gate 2: capture the driver (fails if they hold any assignment).
	if err := s.drivers.AssignOrder(ctx, driverID, orderID); err != nil {
		return nil, err
	}
	// Gate 3: capture the order (fails if another driver won it first).
	fee := orderpkg.FeeBreakdown{
		PickupDistanceKm: off.PickupDistanceKm,
		DropDistanceKm:   pricing.Round2(off.TotalDistanceKm - off.PickupDistanceKm),
		TotalDistanceKm:  off.TotalDistanceKm,
		DriverFee:        off.Earning,
	}
	if err := s.orders.AssignDriver(ctx, off.OrderKind, orderID, driverID, fee); err != nil {
		// Release the driver we just captured before reporting the conflict.
		if cerr := s.drivers.ClearAssignment(ctx, driverID, orderID); cerr != nil {
			log.Printf("dispatch: release driver %s after lost race failed: %v", driverID, cerr)
		}
		return nil, err
	}

	job, err := s.orders.ResolveJob(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if s.hub != nil {
		payload := realtime.OrderStatusPayload{OrderID: orderID.String(), Status: string(job.LifecycleStatus())}
		_ = s.hub.NotifyCustomer(job.CustomerRef().String(), "order.status", payload)
		_ = s.hub.NotifyCustomer(job.CustomerRef().String(), "order.assigned", payload)
	}
	s.producer.Publish(events.OrderEvent{
		Type:       "order.assigned",
		OrderID:    orderID.String(),
		OrderKind:  string(job.JobKind()),
		CustomerID: job.CustomerRef().String(),
		DriverID:   driverID.String(),
		Status:     string(job.LifecycleStatus()),
		OccurredAt: time.Now(),
	})
	return job, nil
}

func (s *service) RejectOffer(ctx context.Context, orderID, driverID uuid.UUID) error {
	off, err := s.offers.GetForPair(ctx, orderID, driverID)
	if err != nil {
		return err
	}
	return s.offers.Reject(ctx, off.ID)
}

func (s *service) ExpireStaleOffers(ctx context.Context) (int64, error) {
	return s.offers.ExpireStale(ctx)
}
