// Package pricing converts distances into money. Both the customer delivery
// charge and the driver payout share the same tiered-lookup-with-formula-
// fallback scheme; the only differences are which tier table applies and
// whether the payout mode can force the formula.
package pricing

import (
	"math"

	"github.com/sevabazar/delivery-backend/entity"
	"github.com/sevabazar/delivery-backend/geo"
)

// PayoutQuote is the driver-earning breakdown for one candidate.
type PayoutQuote struct {
	PickupLegKm float64 `json:"pickup_leg_km"`
	DropLegKm   float64 `json:"drop_leg_km"`
	TotalKm     float64 `json:"total_km"`
	Fee         float64 `json:"fee"`
}

// CustomerDeliveryFee prices the customer-facing delivery charge for the given
// distance. Tier scan first, formula fallback when nothing matches.
func CustomerDeliveryFee(distanceKm float64, s *entity.Settings) float64 {
	if distanceKm < 0 {
		distanceKm = 0
	}
	if fee, ok := matchTier(distanceKm, s.DeliveryChargeTiers); ok {
		return Round2(nonNegative(fee))
	}
	return Round2(formulaFee(distanceKm, s.DriverDeliveryFee))
}

// DriverPayout prices a driver's earning for serving an order from their
// current position: leg A (current → pickup) plus leg B (pickup → drop).
// Zero-length legs are valid; the driver may already be standing at the vendor.
func DriverPayout(current, pickup, drop geo.Point, s *entity.Settings) PayoutQuote {
	legA := geo.DistanceKm(current, pickup)
	legB := geo.DistanceKm(pickup, drop)
	total := legA + legB

	var fee float64
	if s.DriverPayoutMode != entity.PayoutFormula {
		if tierFee, ok := matchTier(total, s.DriverPaymentTiers); ok {
			fee = tierFee
		} else {
			fee = formulaFee(total, s.DriverDeliveryFee)
		}
	} else {
		fee = formulaFee(total, s.DriverDeliveryFee)
	}

	return PayoutQuote{
		PickupLegKm: roundDistance(legA),
		DropLegKm:   roundDistance(legB),
		TotalKm:     roundDistance(total),
		Fee:         Round2(nonNegative(fee)),
	}
}

// matchTier scans tiers in order and returns the first matching fee.
func matchTier(distanceKm float64, tiers []entity.PricingTier) (float64, bool) {
	for _, t := range tiers {
		switch t.Condition {
		case entity.TierRange:
			if distanceKm >= t.MinKm && distanceKm < t.MaxKm {
				return t.Fee, true
			}
		case entity.TierGreaterThan:
			if distanceKm > t.MinKm {
				return t.Fee, true
			}
		case entity.TierLessThan:
			if distanceKm < t.MaxKm {
				return t.Fee, true
			}
		}
	}
	return 0, false
}

func formulaFee(distanceKm float64, f entity.DeliveryFeeFormula) float64 {
	if distanceKm <= f.BaseDistanceKm {
		return f.BasePay
	}
	return f.BasePay + (distanceKm-f.BaseDistanceKm)*f.PerKmRate
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// Round2 rounds a monetary amount to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// roundDistance keeps distances at a consistent 3-decimal precision.
func roundDistance(km float64) float64 {
	return math.Round(km*1000) / 1000
}
