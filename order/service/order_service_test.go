package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sevabazar/delivery-backend/apperr"
	"github.com/sevabazar/delivery-backend/driver"
	driverrepo "github.com/sevabazar/delivery-backend/driver/repository"
	"github.com/sevabazar/delivery-backend/entity"
	orderpkg "github.com/sevabazar/delivery-backend/order"
	orderrepo "github.com/sevabazar/delivery-backend/order/repository"
	"github.com/sevabazar/delivery-backend/settings"
	"github.com/sevabazar/delivery-backend/settlement"
	"github.com/sevabazar/delivery-backend/vendors"
)

type fixture struct {
	db      *gorm.DB
	orders  orderpkg.Repository
	drivers driver.Repository
	vendors vendors.Repository
	svc     orderpkg.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&entity.User{}, &entity.Driver{}, &entity.Vendor{},
		&entity.Order{}, &entity.VendorOrder{}, &entity.OrderItem{}, &entity.InformalOrder{},
		&entity.Settings{},
	))

	orders := orderrepo.NewGormOrderRepo(db)
	drivers := driverrepo.NewGormDriverRepo(db)
	vendorRepo := vendors.NewGormRepository(db)
	settingsRepo := settings.NewGormRepository(db)
	settle := settlement.NewService(orders, drivers)
	svc := NewOrderService(orders, drivers, vendorRepo, settingsRepo, settle, nil, nil)

	return &fixture{db: db, orders: orders, drivers: drivers, vendors: vendorRepo, svc: svc}
}

func ptr(v float64) *float64 { return &v }

func (f *fixture) seedVendor(t *testing.T) *entity.Vendor {
	t.Helper()
	v := &entity.Vendor{Name: "Corner Store", Address: "1 Main St", Latitude: ptr(0), Longitude: ptr(0), Active: true}
	require.NoError(t, f.db.Create(v).Error)
	return v
}

func (f *fixture) seedDriver(t *testing.T) *entity.Driver {
	t.Helper()
	d := &entity.Driver{UserID: uuid.New(), ApprovalStatus: entity.DriverApproved, Online: true}
	require.NoError(t, f.db.Create(d).Error)
	return d
}

// createAssigned creates a COD order and walks it to processing with the
// driver captured, as offer acceptance would.
func (f *fixture) createAssigned(t *testing.T, v *entity.Vendor, d *entity.Driver) *entity.Order {
	t.Helper()
	ctx := context.Background()
	o, err := f.svc.CreateOrder(ctx, orderpkg.CreateOrderRequest{
		CustomerID:      uuid.New(),
		ShippingAddress: "5 Cross Rd",
		ShippingLat:     ptr(0),
		ShippingLng:     ptr(0.009),
		VendorOrders: []orderpkg.CreateVendorOrder{{
			VendorID: v.ID,
			Items:    []orderpkg.CreateItem{{Name: "rice 5kg", Quantity: 2, UnitPrice: 50}},
		}},
	})
	require.NoError(t, err)
	require.NoError(t, f.drivers.AssignOrder(ctx, d.ID, o.ID))
	require.NoError(t, f.orders.AssignDriver(ctx, entity.OrderKindRegular, o.ID, d.ID, orderpkg.FeeBreakdown{
		PickupDistanceKm: 1, DropDistanceKm: 1, TotalDistanceKm: 2, DriverFee: 42,
	}))
	return o
}

func TestCreateOrderValidationAndPricing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.seedVendor(t)

	_, err := f.svc.CreateOrder(ctx, orderpkg.CreateOrderRequest{CustomerID: uuid.New(), ShippingAddress: "x"})
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidInput), "no vendor slices")

	_, err = f.svc.CreateOrder(ctx, orderpkg.CreateOrderRequest{
		CustomerID:      uuid.New(),
		ShippingAddress: "x",
		VendorOrders:    []orderpkg.CreateVendorOrder{{VendorID: v.ID}},
	})
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidInput), "empty vendor slice")

	o, err := f.svc.CreateOrder(ctx, orderpkg.CreateOrderRequest{
		CustomerID:      uuid.New(),
		ShippingAddress: "5 Cross Rd",
		ShippingLat:     ptr(0),
		ShippingLng:     ptr(0.009),
		VendorOrders: []orderpkg.CreateVendorOrder{{
			VendorID: v.ID,
			Items:    []orderpkg.CreateItem{{Name: "rice 5kg", Quantity: 2, UnitPrice: 50}},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderPending, o.Status)
	assert.Len(t, o.PickupOTP, 4)
	assert.Empty(t, o.DeliveryOTP, "delivery code is issued at pickup, not creation")
	assert.Equal(t, 30.0, o.DeliveryFee, "~1 km is inside the formula base distance")
	assert.Equal(t, 100.0, o.VendorOrders[0].Items[0].Total)
	assert.Equal(t, entity.PaymentUnpaid, o.PaymentStatus)
}

func TestVerifyPickupGates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.seedVendor(t)
	d := f.seedDriver(t)
	o := f.createAssigned(t, v, d)

	_, err := f.svc.VerifyPickup(ctx, o.ID, uuid.New(), o.PickupOTP)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized), "foreign driver")

	_, err = f.svc.VerifyPickup(ctx, o.ID, d.ID, "0000x")
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized), "wrong code")

	job, err := f.svc.VerifyPickup(ctx, o.ID, d.ID, o.PickupOTP)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderShipped, job.LifecycleStatus())
	assert.Len(t, job.DeliveryCode(), 4)

	stored, err := f.orders.GetOrderByID(ctx, o.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.EstimatedArrivalAt)

	_, err = f.svc.VerifyPickup(ctx, o.ID, d.ID, o.PickupOTP)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict), "pickup is single-shot")
}

func TestCompleteDeliverySettlesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.seedVendor(t)
	d := f.seedDriver(t)
	o := f.createAssigned(t, v, d)

	shipped, err := f.svc.VerifyPickup(ctx, o.ID, d.ID, o.PickupOTP)
	require.NoError(t, err)

	_, err = f.svc.CompleteDelivery(ctx, o.ID, d.ID, "not-a-code")
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized), "wrong code must not complete a delivery")

	done, err := f.svc.CompleteDelivery(ctx, o.ID, d.ID, shipped.DeliveryCode())
	require.NoError(t, err)
	assert.Equal(t, entity.OrderDelivered, done.LifecycleStatus())
	require.NotNil(t, done.DeliveredTime())

	earning, status := done.Earning()
	assert.Equal(t, 42.0, earning, "quoted fee credited as stamped at acceptance")
	assert.Equal(t, entity.EarningPaid, status)

	driver, err := f.drivers.GetDriverByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Nil(t, driver.CurrentOrderID, "driver freed for new offers")
	assert.Equal(t, 42.0, driver.WalletBalance)
	assert.Equal(t, 130.0, driver.FloatingCash, "COD items plus delivery fee")

	firstDeliveredAt := *done.DeliveredTime()

	_, err = f.svc.CompleteDelivery(ctx, o.ID, d.ID, shipped.DeliveryCode())
	assert.True(t, apperr.IsKind(err, apperr.KindConflict), "second completion must conflict")

	driver, err = f.drivers.GetDriverByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 42.0, driver.WalletBalance, "no double credit")

	stored, err := f.orders.GetOrderByID(ctx, o.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, firstDeliveredAt, *stored.DeliveredAt, time.Second, "delivered_at written exactly once")
}

func TestCancelReleasesDriver(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.seedVendor(t)
	d := f.seedDriver(t)
	o := f.createAssigned(t, v, d)

	job, err := f.svc.Cancel(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderCancelled, job.LifecycleStatus())

	driver, err := f.drivers.GetDriverByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Nil(t, driver.CurrentOrderID)

	_, err = f.svc.Cancel(ctx, o.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict), "cancel of a terminal order conflicts")
}

func TestInformalOrderLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.seedVendor(t)
	d := f.seedDriver(t)

	o, err := f.svc.CreateInformalOrder(ctx, orderpkg.CreateInformalOrderRequest{
		CustomerID:      uuid.New(),
		VendorID:        v.ID,
		Description:     "2x dosa, 1x filter coffee",
		Amount:          180,
		ShippingAddress: "5 Cross Rd",
		ShippingLat:     ptr(0),
		ShippingLng:     ptr(0.009),
	})
	require.NoError(t, err)
	assert.Len(t, o.PickupOTP, 4)
	assert.Equal(t, 30.0, o.DeliveryFee)

	require.NoError(t, f.drivers.AssignOrder(ctx, d.ID, o.ID))
	require.NoError(t, f.orders.AssignDriver(ctx, entity.OrderKindInformal, o.ID, d.ID, orderpkg.FeeBreakdown{DriverFee: 35}))

	shipped, err := f.svc.VerifyPickup(ctx, o.ID, d.ID, o.PickupOTP)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderKindInformal, shipped.JobKind())

	done, err := f.svc.CompleteDelivery(ctx, o.ID, d.ID, shipped.DeliveryCode())
	require.NoError(t, err)
	assert.Equal(t, entity.OrderDelivered, done.LifecycleStatus())

	driver, err := f.drivers.GetDriverByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 35.0, driver.WalletBalance)
	assert.Equal(t, 210.0, driver.FloatingCash, "amount plus delivery fee")
}

func TestListDeliveredForDriverPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.seedVendor(t)
	d := f.seedDriver(t)

	for i := 0; i < 3; i++ {
		o := f.createAssigned(t, v, d)
		shipped, err := f.svc.VerifyPickup(ctx, o.ID, d.ID, o.PickupOTP)
		require.NoError(t, err)
		_, err = f.svc.CompleteDelivery(ctx, o.ID, d.ID, shipped.DeliveryCode())
		require.NoError(t, err)
	}

	page, total, err := f.svc.ListDeliveredForDriver(ctx, d.ID, 2, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, page, 2)

	rest, _, err := f.svc.ListDeliveredForDriver(ctx, d.ID, 2, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}
