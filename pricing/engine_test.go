package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sevabazar/delivery-backend/entity"
	"github.com/sevabazar/delivery-backend/geo"
)

func TestCustomerDeliveryFee(t *testing.T) {
	t.Run("formula fallback beyond base distance", func(t *testing.T) {
		s := entity.DefaultSettings() // base 30 up to 5 km, then 10/km
		assert.Equal(t, 60.0, CustomerDeliveryFee(8, s))
	})

	t.Run("formula base pay within base distance", func(t *testing.T) {
		s := entity.DefaultSettings()
		assert.Equal(t, 30.0, CustomerDeliveryFee(3, s))
		assert.Equal(t, 30.0, CustomerDeliveryFee(0, s))
	})

	t.Run("tier wins over formula when it matches", func(t *testing.T) {
		s := entity.DefaultSettings()
		s.DeliveryChargeTiers = []entity.PricingTier{
			{Condition: entity.TierRange, MinKm: 0, MaxKm: 5, Fee: 25},
			{Condition: entity.TierGreaterThan, MinKm: 5, Fee: 70},
		}
		assert.Equal(t, 25.0, CustomerDeliveryFee(2, s))
		assert.Equal(t, 70.0, CustomerDeliveryFee(9, s))
	})

	t.Run("range upper bound is exclusive", func(t *testing.T) {
		s := entity.DefaultSettings()
		s.DeliveryChargeTiers = []entity.PricingTier{
			{Condition: entity.TierRange, MinKm: 0, MaxKm: 5, Fee: 25},
		}
		// 5 km falls outside the tier; the formula base pay applies.
		assert.Equal(t, 30.0, CustomerDeliveryFee(5, s))
	})

	t.Run("negative distance treated as zero", func(t *testing.T) {
		s := entity.DefaultSettings()
		assert.Equal(t, 30.0, CustomerDeliveryFee(-4, s))
	})

	t.Run("negative tier fee clamps to zero", func(t *testing.T) {
		s := entity.DefaultSettings()
		s.DeliveryChargeTiers = []entity.PricingTier{
			{Condition: entity.TierLessThan, MaxKm: 100, Fee: -5},
		}
		assert.Equal(t, 0.0, CustomerDeliveryFee(1, s))
	})
}

func TestDriverPayout(t *testing.T) {
	vendorAt := geo.Point{Lat: 0, Lng: 0}
	dropNear := geo.Point{Lat: 0, Lng: 0.009} // ~1 km east

	t.Run("tier matches the two-leg total", func(t *testing.T) {
		s := entity.DefaultSettings()
		s.DriverPaymentTiers = []entity.PricingTier{
			{Condition: entity.TierRange, MinKm: 0, MaxKm: 5, Fee: 50},
		}
		q := DriverPayout(vendorAt, vendorAt, dropNear, s)
		assert.Equal(t, 50.0, q.Fee)
		assert.Zero(t, q.PickupLegKm)
		assert.InDelta(t, 1.0, q.DropLegKm, 0.01)
		assert.InDelta(t, q.DropLegKm, q.TotalKm, 1e-9)
	})

	t.Run("formula fallback when no tier matches", func(t *testing.T) {
		s := entity.DefaultSettings()
		s.DriverPaymentTiers = []entity.PricingTier{
			{Condition: entity.TierRange, MinKm: 0, MaxKm: 0.5, Fee: 20},
		}
		q := DriverPayout(vendorAt, vendorAt, dropNear, s)
		// ~1 km total is within the 5 km base distance.
		assert.Equal(t, 30.0, q.Fee)
	})

	t.Run("formula mode ignores tiers", func(t *testing.T) {
		s := entity.DefaultSettings()
		s.DriverPayoutMode = entity.PayoutFormula
		s.DriverPaymentTiers = []entity.PricingTier{
			{Condition: entity.TierLessThan, MaxKm: 1000, Fee: 999},
		}
		q := DriverPayout(vendorAt, vendorAt, dropNear, s)
		assert.Equal(t, 30.0, q.Fee)
	})

	t.Run("both legs contribute to the total", func(t *testing.T) {
		s := entity.DefaultSettings()
		driverAt := geo.Point{Lat: 0, Lng: -0.009} // ~1 km west of the vendor
		q := DriverPayout(driverAt, vendorAt, dropNear, s)
		assert.InDelta(t, 1.0, q.PickupLegKm, 0.01)
		assert.InDelta(t, 1.0, q.DropLegKm, 0.01)
		assert.InDelta(t, 2.0, q.TotalKm, 0.02)
	})

	t.Run("zero legs price at base pay", func(t *testing.T) {
		s := entity.DefaultSettings()
		q := DriverPayout(vendorAt, vendorAt, vendorAt, s)
		assert.Zero(t, q.TotalKm)
		assert.Equal(t, 30.0, q.Fee)
	})
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 10.56, Round2(10.556))
	assert.Equal(t, 10.55, Round2(10.554))
	assert.Equal(t, 10.0, Round2(10.0))
	assert.Equal(t, -2.5, Round2(-2.499999999))
}
