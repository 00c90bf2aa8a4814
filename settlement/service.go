// Package settlement reconciles driver earnings: cleared wallet money versus
// cash still in the driver's hand ("floating cash") from cash-on-delivery
// orders, with an overdue check against the daily settlement deadline.
package settlement

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sevabazar/delivery-backend/driver"
	"github.com/sevabazar/delivery-backend/entity"
	"github.com/sevabazar/delivery-backend/order"
	"github.com/sevabazar/delivery-backend/pricing"
)

// The settlement day rolls over at midnight in the operating region,
// modeled as a fixed IST offset.
var settlementZone = time.FixedZone("IST", 5*3600+30*60)

// Summary is a driver's wallet standing.
type Summary struct {
	ClearedBalance float64 `json:"cleared_balance"`
	FloatingCash   float64 `json:"floating_cash"`
	IsOverdue      bool    `json:"is_overdue"`
	OverdueAmount  float64 `json:"overdue_amount"`
}

// Service is the settlement ledger over the order and driver stores.
type Service struct {
	orders  order.Repository
	drivers driver.Repository
	now     func() time.Time
}

func NewService(orders order.Repository, drivers driver.Repository) *Service {
	return &Service{orders: orders, drivers: drivers, now: time.Now}
}

// WithClock overrides the time source for deterministic cutoff tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// EffectivePayable is the single resolver for an order's collectible amount:
// the stored floating-cash stamp when present, otherwise recomputed from the
// raw order fields with the same formula settlement uses. Both settlement and
// summary go through here so the two paths cannot diverge.
func EffectivePayable(job order.DeliveryJob) float64 {
	if amount, _ := job.FloatingCash(); amount > 0 {
		return amount
	}
	return pricing.Round2(job.ItemsTotal() + job.ShippingFee())
}

// SettleDelivery credits the payout into the driver's wallet and, for orders
// the driver collected in cash, books the payable total as pending floating
// cash. The order-side stamp is guarded on the earning still being unpaid, so
// a retried call conflicts instead of double-crediting.
func (s *Service) SettleDelivery(ctx context.Context, job order.DeliveryJob, driverID uuid.UUID, payout float64) error {
	payout = pricing.Round2(payout)

	stamp := order.SettlementStamp{
		FloatingCashStatus: entity.FloatingCashNone,
		DriverEarning:      payout,
		EarningStatus:      entity.EarningPaid,
	}
	var floating float64
	if job.Payment() != entity.PaymentPaid {
		floating = EffectivePayable(job)
		stamp.FloatingCashAmount = floating
		stamp.FloatingCashStatus = entity.FloatingCashPending
	}

	if err := s.orders.StampSettlement(ctx, job.JobKind(), job.JobID(), stamp); err != nil {
		return err
	}
	return s.drivers.CreditEarnings(ctx, driverID, payout, floating)
}

// WalletSummary reports cleared balance, outstanding floating cash and the
// overdue standing against the most recent daily cutoff.
func (s *Service) WalletSummary(ctx context.Context, driverID uuid.UUID) (*Summary, error) {
	jobs, err := s.orders.ListDeliveredJobsForDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}

	cutoff := mostRecentCutoff(s.now())
	sum := &Summary{}
	for _, job := range jobs {
		if earning, status := job.Earning(); status == entity.EarningPaid {
			sum.ClearedBalance += earning
		}
		_, fstatus := job.FloatingCash()
		deliveredAt := job.DeliveredTime()
		if fstatus != entity.FloatingCashPending || deliveredAt == nil {
			continue
		}
		amount := EffectivePayable(job)
		sum.FloatingCash += amount
		if deliveredAt.Before(cutoff) {
			sum.OverdueAmount += amount
		}
	}
	sum.ClearedBalance = pricing.Round2(sum.ClearedBalance)
	sum.FloatingCash = pricing.Round2(sum.FloatingCash)
	sum.OverdueAmount = pricing.Round2(sum.OverdueAmount)
	sum.IsOverdue = sum.OverdueAmount > 0
	return sum, nil
}

// HasOverdue reports whether the driver is past the settlement deadline.
// Dispatch uses this to exclude the driver from new offers.
func (s *Service) HasOverdue(ctx context.Context, driverID uuid.UUID) (bool, error) {
	sum, err := s.WalletSummary(ctx, driverID)
	if err != nil {
		return false, err
	}
	return sum.IsOverdue, nil
}

// ClearFloatingCash settles all pending floats for a driver (admin action
// after the driver hands the cash over).
func (s *Service) ClearFloatingCash(ctx context.Context, driverID uuid.UUID) (float64, error) {
	total, err := s.orders.MarkFloatingCashCleared(ctx, driverID)
	if err != nil {
		return 0, err
	}
	if total > 0 {
		if err := s.drivers.ReduceFloatingCash(ctx, driverID, total); err != nil {
			return 0, err
		}
	}
	return pricing.Round2(total), nil
}

// mostRecentCutoff returns midnight of the current settlement day.
func mostRecentCutoff(now time.Time) time.Time {
	local := now.In(settlementZone)
	y, m, d := local.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, settlementZone)
}
