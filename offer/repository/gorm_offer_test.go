package repository

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
	"github.com/sevabazar/delivery-backend/entity"
	"github.com/sevabazar/delivery-backend/offer"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entity.Offer{}))
	return db
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestRecordOfferIsIdempotentPerPair(t *testing.T) {
	db := newTestDB(t)
	base := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	repo := NewGormOfferRepo(db).WithClock(fixedClock(base))
	ctx := context.Background()

	orderID := uuid.New()
	driverID := uuid.New()

	first, err := repo.RecordOffer(ctx, offer.RecordOfferParams{
		OrderID: orderID, OrderKind: entity.OrderKindRegular, DriverID: driverID,
		PickupDistanceKm: 1.2, TotalDistanceKm: 3.4, Earning: 45,
	})
	require.NoError(t, err)

	second, err := repo.RecordOffer(ctx, offer.RecordOfferParams{
		OrderID: orderID, OrderKind: entity.OrderKindRegular, DriverID: driverID,
		PickupDistanceKm: 0.8, TotalDistanceKm: 2.9, Earning: 50,
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "same pair must reuse the row")
	assert.Equal(t, 50.0, second.Earning)
	assert.Equal(t, 0.8, second.PickupDistanceKm)
	assert.Equal(t, entity.OfferPending, second.Status)

	var count int64
	require.NoError(t, db.Model(&entity.Offer{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRecordOfferResetsARejectedRow(t *testing.T) {
	db := newTestDB(t)
	base := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	repo := NewGormOfferRepo(db).WithClock(fixedClock(base))
	ctx := context.Background()

	p := offer.RecordOfferParams{OrderID: uuid.New(), OrderKind: entity.OrderKindRegular, DriverID: uuid.New(), Earning: 40}
	rec, err := repo.RecordOffer(ctx, p)
	require.NoError(t, err)
	require.NoError(t, repo.Reject(ctx, rec.ID))

	again, err := repo.RecordOffer(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, again.ID)
	assert.Equal(t, entity.OfferPending, again.Status)
}

func TestAcceptTransitions(t *testing.T) {
	db := newTestDB(t)
	base := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	repo := NewGormOfferRepo(db).WithClock(fixedClock(base))
	ctx := context.Background()

	rec, err := repo.RecordOffer(ctx, offer.RecordOfferParams{
		OrderID: uuid.New(), OrderKind: entity.OrderKindInformal, DriverID: uuid.New(), Earning: 60,
	})
	require.NoError(t, err)

	require.NoError(t, repo.Accept(ctx, rec.ID))

	err = repo.Accept(ctx, rec.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict), "second accept must conflict")

	err = repo.Reject(ctx, rec.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict), "reject after accept must conflict")
}

func TestAcceptRefusesStaleOffers(t *testing.T) {
	db := newTestDB(t)
	base := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	repo := NewGormOfferRepo(db).WithClock(fixedClock(base))
	ctx := context.Background()

	rec, err := repo.RecordOffer(ctx, offer.RecordOfferParams{
		OrderID: uuid.New(), OrderKind: entity.OrderKindRegular, DriverID: uuid.New(), Earning: 40,
	})
	require.NoError(t, err)

	// Move past the TTL without any sweep having run.
	repo.WithClock(fixedClock(base.Add(offer.TTL + time.Second)))

	err = repo.Accept(ctx, rec.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestActiveForDriverExcludesStaleAndForeign(t *testing.T) {
	db := newTestDB(t)
	base := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	repo := NewGormOfferRepo(db).WithClock(fixedClock(base.Add(-offer.TTL - time.Minute)))
	ctx := context.Background()

	driverID := uuid.New()

	// Stale offer, recorded well before the TTL window.
	_, err := repo.RecordOffer(ctx, offer.RecordOfferParams{OrderID: uuid.New(), OrderKind: entity.OrderKindRegular, DriverID: driverID, Earning: 10})
	require.NoError(t, err)

	// Fresh offer for our driver and one for someone else.
	repo.WithClock(fixedClock(base))
	fresh, err := repo.RecordOffer(ctx, offer.RecordOfferParams{OrderID: uuid.New(), OrderKind: entity.OrderKindRegular, DriverID: driverID, Earning: 20})
	require.NoError(t, err)
	_, err = repo.RecordOffer(ctx, offer.RecordOfferParams{OrderID: uuid.New(), OrderKind: entity.OrderKindRegular, DriverID: uuid.New(), Earning: 30})
	require.NoError(t, err)

	active, err := repo.ActiveForDriver(ctx, driverID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, fresh.ID, active[0].ID)
}

func TestExpireStaleSweep(t *testing.T) {
	db := newTestDB(t)
	base := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	repo := NewGormOfferRepo(db).WithClock(fixedClock(base))
	ctx := context.Background()

	old, err := repo.RecordOffer(ctx, offer.RecordOfferParams{OrderID: uuid.New(), OrderKind: entity.OrderKindRegular, DriverID: uuid.New(), Earning: 10})
	require.NoError(t, err)

	repo.WithClock(fixedClock(base.Add(offer.TTL + time.Minute)))
	fresh, err := repo.RecordOffer(ctx, offer.RecordOfferParams{OrderID: uuid.New(), OrderKind: entity.OrderKindRegular, DriverID: uuid.New(), Earning: 20})
	require.NoError(t, err)

	swept, err := repo.ExpireStale(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, swept)

	gotOld, err := repo.GetByID(ctx, old.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OfferExpired, gotOld.Status)

	gotFresh, err := repo.GetByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OfferPending, gotFresh.Status)
}
