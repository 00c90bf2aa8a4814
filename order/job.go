package order

import (
	"time"

	"github.com/google/uuid"

	"github.com/sevabazar/delivery-backend/entity"
	"github.com/sevabazar/delivery-backend/geo"
)

// JobItem is one line of a delivery job's contents, shaped for the offer
// notification payload (one representative image per item).
type JobItem struct {
	Name     string  `json:"name"`
	ImageURL string  `json:"image_url,omitempty"`
	Quantity int     `json:"quantity"`
	Total    float64 `json:"total"`
}

// DeliveryJob is the common view over the two order variants. Dispatch,
// lifecycle and settlement resolve the variant once at the boundary and work
// against this interface instead of re-probing shapes.
type DeliveryJob interface {
	JobID() uuid.UUID
	JobKind() entity.OrderKind
	CustomerRef() uuid.UUID
	// PickupVendor is the vendor whose stored location anchors the pickup.
	PickupVendor() uuid.UUID
	// Drop returns the shipping destination, ok=false when coordinates are missing.
	Drop() (geo.Point, bool)
	Items() []JobItem
	// ItemsTotal is the payable goods amount, excluding the delivery fee.
	ItemsTotal() float64
	ShippingFee() float64
	Payment() entity.PaymentStatus
	AssignedDriver() *uuid.UUID
	PickupCode() string
	DeliveryCode() string
	LifecycleStatus() entity.OrderStatus

	CreatedTime() time.Time
	// QuotedDriverFee is the payout stamped when the driver accepted the offer.
	QuotedDriverFee() float64

	// Settlement accessors.
	DeliveredTime() *time.Time
	FloatingCash() (float64, entity.FloatingCashStatus)
	Earning() (float64, entity.EarningStatus)
}

// RegularJob adapts entity.Order to DeliveryJob.
type RegularJob struct {
	Order *entity.Order
}

func (j RegularJob) JobID() uuid.UUID           { return j.Order.ID }
func (j RegularJob) JobKind() entity.OrderKind  { return entity.OrderKindRegular }
func (j RegularJob) CustomerRef() uuid.UUID     { return j.Order.CustomerID }
func (j RegularJob) PickupCode() string         { return j.Order.PickupOTP }
func (j RegularJob) DeliveryCode() string       { return j.Order.DeliveryOTP }
func (j RegularJob) AssignedDriver() *uuid.UUID { return j.Order.DriverID }
func (j RegularJob) ShippingFee() float64       { return j.Order.DeliveryFee }

func (j RegularJob) Payment() entity.PaymentStatus       { return j.Order.PaymentStatus }
func (j RegularJob) LifecycleStatus() entity.OrderStatus { return j.Order.Status }
func (j RegularJob) DeliveredTime() *time.Time           { return j.Order.DeliveredAt }
func (j RegularJob) CreatedTime() time.Time              { return j.Order.CreatedAt }
func (j RegularJob) QuotedDriverFee() float64            { return j.Order.DriverFee }

func (j RegularJob) FloatingCash() (float64, entity.FloatingCashStatus) {
	return j.Order.FloatingCashAmount, j.Order.FloatingCashStatus
}

func (j RegularJob) Earning() (float64, entity.EarningStatus) {
	return j.Order.DriverEarning, j.Order.EarningStatus
}

func (j RegularJob) PickupVendor() uuid.UUID {
	if len(j.Order.VendorOrders) == 0 {
		return uuid.Nil
	}
	return j.Order.VendorOrders[0].VendorID
}

func (j RegularJob) Drop() (geo.Point, bool) {
	if j.Order.ShippingLat == nil || j.Order.ShippingLng == nil {
		return geo.Point{}, false
	}
	return geo.Point{Lat: *j.Order.ShippingLat, Lng: *j.Order.ShippingLng}, true
}

func (j RegularJob) Items() []JobItem {
	var items []JobItem
	for _, vo := range j.Order.VendorOrders {
		for _, it := range vo.Items {
			items = append(items, JobItem{
				Name:     it.Name,
				ImageURL: it.ImageURL,
				Quantity: it.Quantity,
				Total:    it.Total,
			})
		}
	}
	return items
}

func (j RegularJob) ItemsTotal() float64 {
	var total float64
	for _, vo := range j.Order.VendorOrders {
		for _, it := range vo.Items {
			total += it.Total
		}
	}
	return total
}

// InformalJob adapts entity.InformalOrder to DeliveryJob.
type InformalJob struct {
	Order *entity.InformalOrder
}

func (j InformalJob) JobID() uuid.UUID           { return j.Order.ID }
func (j InformalJob) JobKind() entity.OrderKind  { return entity.OrderKindInformal }
func (j InformalJob) CustomerRef() uuid.UUID     { return j.Order.CustomerID }
func (j InformalJob) PickupVendor() uuid.UUID    { return j.Order.VendorID }
func (j InformalJob) PickupCode() string         { return j.Order.PickupOTP }
func (j InformalJob) DeliveryCode() string       { return j.Order.DeliveryOTP }
func (j InformalJob) AssignedDriver() *uuid.UUID { return j.Order.DriverID }
func (j InformalJob) ShippingFee() float64       { return j.Order.DeliveryFee }
func (j InformalJob) ItemsTotal() float64        { return j.Order.Amount }

func (j InformalJob) Payment() entity.PaymentStatus       { return j.Order.PaymentStatus }
func (j InformalJob) LifecycleStatus() entity.OrderStatus { return j.Order.Status }
func (j InformalJob) DeliveredTime() *time.Time           { return j.Order.DeliveredAt }
func (j InformalJob) CreatedTime() time.Time              { return j.Order.CreatedAt }
func (j InformalJob) QuotedDriverFee() float64            { return j.Order.DriverFee }

func (j InformalJob) FloatingCash() (float64, entity.FloatingCashStatus) {
	return j.Order.FloatingCashAmount, j.Order.FloatingCashStatus
}

func (j InformalJob) Earning() (float64, entity.EarningStatus) {
	return j.Order.DriverEarning, j.Order.EarningStatus
}

func (j InformalJob) Drop() (geo.Point, bool) {
	if j.Order.ShippingLat == nil || j.Order.ShippingLng == nil {
		return geo.Point{}, false
	}
	return geo.Point{Lat: *j.Order.ShippingLat, Lng: *j.Order.ShippingLng}, true
}

func (j InformalJob) Items() []JobItem {
	return []JobItem{{Name: j.Order.Description, Quantity: 1, Total: j.Order.Amount}}
}
