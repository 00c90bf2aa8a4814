package dispatch

import (
	"context"
	"errors"
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
	"github.com/sevabazar/delivery-backend/offer"
	offerrepo "github.com/sevabazar/delivery-backend/offer/repository"
	orderpkg "github.com/sevabazar/delivery-backend/order"
	orderrepo "github.com/sevabazar/delivery-backend/order/repository"
	"github.com/sevabazar/delivery-backend/settings"
	"github.com/sevabazar/delivery-backend/settlement"
	"github.com/sevabazar/delivery-backend/vendors"
)

// recordingNotifier counts pushes and can be told to fail every call.
type recordingNotifier struct {
	pushes int
	fail   bool
}

func (n *recordingNotifier) Push(ctx context.Context, deviceToken, title, body string, data map[string]string) error {
	n.pushes++
	if n.fail {
		return errors.New("push gateway down")
	}
	return nil
}

type fixture struct {
	db       *gorm.DB
	orders   orderpkg.Repository
	drivers  driver.Repository
	vendors  vendors.Repository
	offers   offer.Repository
	settle   *settlement.Service
	notifier *recordingNotifier
	svc      Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&entity.User{}, &entity.Driver{}, &entity.Vendor{},
		&entity.Order{}, &entity.VendorOrder{}, &entity.OrderItem{}, &entity.InformalOrder{},
		&entity.Offer{}, &entity.Settings{},
	))

	orders := orderrepo.NewGormOrderRepo(db)
	drivers := driverrepo.NewGormDriverRepo(db)
	vendorRepo := vendors.NewGormRepository(db)
	offers := offerrepo.NewGormOfferRepo(db)
	settingsRepo := settings.NewGormRepository(db)
	settle := settlement.NewService(orders, drivers)
	notifier := &recordingNotifier{}
	svc := New(orders, drivers, vendorRepo, offers, settingsRepo, settle, nil, notifier, nil)

	return &fixture{
		db: db, orders: orders, drivers: drivers, vendors: vendorRepo,
		offers: offers, settle: settle, notifier: notifier, svc: svc,
	}
}

func ptr(v float64) *float64 { return &v }

func (f *fixture) seedVendor(t *testing.T) *entity.Vendor {
	t.Helper()
	v := &entity.Vendor{Name: "Corner Store", Address: "1 Main St", Latitude: ptr(0), Longitude: ptr(0), Active: true}
	require.NoError(t, f.db.Create(v).Error)
	return v
}

func (f *fixture) seedDriver(t *testing.T, lng float64) *entity.Driver {
	t.Helper()
	d := &entity.Driver{
		UserID:         uuid.New(),
		ApprovalStatus: entity.DriverApproved,
		Online:         true,
		Latitude:       ptr(0),
		Longitude:      ptr(lng),
		DeviceToken:    "tok-" + uuid.NewString(),
	}
	require.NoError(t, f.db.Create(d).Error)
	return d
}

func (f *fixture) seedOrder(t *testing.T, v *entity.Vendor) *entity.Order {
	t.Helper()
	o := &entity.Order{
		CustomerID:      uuid.New(),
		ShippingAddress: "5 Cross Rd",
		ShippingLat:     ptr(0),
		ShippingLng:     ptr(0.009),
		DeliveryFee:     30,
		PickupOTP:       "1234",
		Status:          entity.OrderPending,
		VendorOrders: []entity.VendorOrder{{
			VendorID: v.ID,
			Items:    []entity.OrderItem{{Name: "rice 5kg", Quantity: 2, UnitPrice: 50, Total: 100}},
		}},
	}
	require.NoError(t, f.db.Create(o).Error)
	return o
}

func TestDispatchUnknownOrderYieldsEmpty(t *testing.T) {
	f := newFixture(t)
	notified, err := f.svc.Dispatch(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, notified)
	assert.Zero(t, f.notifier.pushes)
}

func TestDispatchSkipsNonPendingOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.seedVendor(t)
	f.seedDriver(t, 0.005)
	o := f.seedOrder(t, v)
	require.NoError(t, f.db.Model(o).Update("status", entity.OrderProcessing).Error)

	notified, err := f.svc.Dispatch(ctx, o.ID)
	require.NoError(t, err)
	assert.Empty(t, notified)
}

func TestDispatchFansOutToEligibleDrivers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.seedVendor(t)
	near := f.seedDriver(t, 0.005)
	mid := f.seedDriver(t, 0.01)
	f.seedDriver(t, 1.0) // ~111 km, far outside the search radius
	o := f.seedOrder(t, v)

	notified, err := f.svc.Dispatch(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, notified, 2)
	assert.Equal(t, near.ID, notified[0], "closest driver first")
	assert.Equal(t, mid.ID, notified[1])
	assert.Equal(t, 2, f.notifier.pushes)

	rec, err := f.offers.GetForPair(ctx, o.ID, near.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OfferPending, rec.Status)
	assert.Greater(t, rec.Earning, 0.0)
	assert.Greater(t, rec.TotalDistanceKm, 0.0)
}

func TestDispatchSurvivesNotifierFailures(t *testing.T) {
	f := newFixture(t)
	f.notifier.fail = true
	ctx := context.Background()
	v := f.seedVendor(t)
	f.seedDriver(t, 0.005)
	f.seedDriver(t, 0.01)
	o := f.seedOrder(t, v)

	notified, err := f.svc.Dispatch(ctx, o.ID)
	require.NoError(t, err)
	assert.Len(t, notified, 2, "push failures must not drop candidates")
}

func TestDispatchRedispatchReusesOfferRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.seedVendor(t)
	f.seedDriver(t, 0.005)
	o := f.seedOrder(t, v)

	first, err := f.svc.Dispatch(ctx, o.ID)
	require.NoError(t, err)
	second, err := f.svc.Dispatch(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var count int64
	require.NoError(t, f.db.Model(&entity.Offer{}).Where("order_id = ?", o.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count, "re-dispatch upserts, never duplicates")
}

func TestDispatchExcludesOverdueDrivers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.FixedZone("IST", 5*3600+30*60))
	f.settle.WithClock(func() time.Time { return now })

	v := f.seedVendor(t)
	clean := f.seedDriver(t, 0.005)
	overdue := f.seedDriver(t, 0.006)

	// The overdue driver sits on unsettled COD cash from before the cutoff.
	deliveredAt := now.AddDate(0, 0, -1)
	old := &entity.Order{
		CustomerID:      uuid.New(),
		ShippingAddress: "old order",
		PaymentStatus:   entity.PaymentUnpaid,
		DeliveryFee:     20,
		DriverID:        &overdue.ID,
		Status:          entity.OrderDelivered,
		DeliveredAt:     &deliveredAt,
		VendorOrders: []entity.VendorOrder{{
			VendorID: v.ID,
			Items:    []entity.OrderItem{{Name: "goods", Quantity: 1, UnitPrice: 100, Total: 100}},
		}},
	}
	require.NoError(t, f.db.Create(old).Error)
	job, err := f.orders.ResolveJob(ctx, old.ID)
	require.NoError(t, err)
	require.NoError(t, f.settle.SettleDelivery(ctx, job, overdue.ID, 40))

	o := f.seedOrder(t, v)
	notified, err := f.svc.Dispatch(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, notified, 1)
	assert.Equal(t, clean.ID, notified[0])
}

func TestAcceptOfferSingleWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.seedVendor(t)
	a := f.seedDriver(t, 0.005)
	b := f.seedDriver(t, 0.01)
	o := f.seedOrder(t, v)

	notified, err := f.svc.Dispatch(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, notified, 2)

	job, err := f.svc.AcceptOffer(ctx, o.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderProcessing, job.LifecycleStatus())
	require.NotNil(t, job.AssignedDriver())
	assert.Equal(t, a.ID, *job.AssignedDriver())
	assert.Greater(t, job.QuotedDriverFee(), 0.0, "fee stamped from the accepted offer")

	winner, err := f.drivers.GetDriverByID(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, winner.CurrentOrderID)
	assert.Equal(t, o.ID, *winner.CurrentOrderID)

	_, err = f.svc.AcceptOffer(ctx, o.ID, b.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict), "loser of the race gets a conflict")

	loser, err := f.drivers.GetDriverByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Nil(t, loser.CurrentOrderID, "losing driver is released for other work")
}

func TestAcceptOfferWithoutOffer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.seedVendor(t)
	d := f.seedDriver(t, 0.005)
	o := f.seedOrder(t, v)

	_, err := f.svc.AcceptOffer(ctx, o.ID, d.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestRejectOfferThenAcceptConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.seedVendor(t)
	d := f.seedDriver(t, 0.005)
	o := f.seedOrder(t, v)

	_, err := f.svc.Dispatch(ctx, o.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.RejectOffer(ctx, o.ID, d.ID))

	_, err = f.svc.AcceptOffer(ctx, o.ID, d.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	rec, err := f.offers.GetForPair(ctx, o.ID, d.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OfferRejected, rec.Status)
}
