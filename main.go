package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authpkg "github.com/sevabazar/delivery-backend/auth"
	authrepo "github.com/sevabazar/delivery-backend/auth/repository"
	authsvc "github.com/sevabazar/delivery-backend/auth/service"
	"github.com/sevabazar/delivery-backend/dispatch"
	driverrepo "github.com/sevabazar/delivery-backend/driver/repository"
	driversvc "github.com/sevabazar/delivery-backend/driver/service"
	"github.com/sevabazar/delivery-backend/events"
	api "github.com/sevabazar/delivery-backend/handler"
	"github.com/sevabazar/delivery-backend/middleware"
	"github.com/sevabazar/delivery-backend/notify"
	offerrepo "github.com/sevabazar/delivery-backend/offer/repository"
	orderrepo "github.com/sevabazar/delivery-backend/order/repository"
	ordersvc "github.com/sevabazar/delivery-backend/order/service"
	"github.com/sevabazar/delivery-backend/realtime"
	"github.com/sevabazar/delivery-backend/settings"
	"github.com/sevabazar/delivery-backend/settlement"
	"github.com/sevabazar/delivery-backend/vendors"
)

func main() {
	cfg := loadConfig()
	db := setupDatabase(cfg)
	ctx := context.Background()

	// Firebase is optional: without credentials, signup falls back to payload
	// UIDs and offer pushes are dropped.
	fbApp, err := authpkg.InitFirebaseApp(ctx)
	if err != nil {
		log.Println("warning: firebase init failed:", err)
	}
	fbAuthClient, err := authpkg.InitFirebaseAuth(ctx, fbApp)
	if err != nil {
		log.Println("warning: firebase auth client init failed:", err)
	}
	var notifier notify.Notifier = notify.Noop{}
	if fbApp != nil {
		if fcm, err := notify.NewFCMNotifier(ctx, fbApp); err == nil {
			notifier = fcm
		} else {
			log.Println("warning: fcm init failed:", err)
		}
	}

	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer, err = events.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			log.Println("warning: kafka producer init failed, events disabled:", err)
			producer = nil
		} else {
			defer producer.Close()
		}
	}

	hub := realtime.NewHub()

	// repositories
	authRepo := authrepo.NewGormAuthRepo(db)
	driverRepo := driverrepo.NewGormDriverRepo(db)
	offerRepo := offerrepo.NewGormOfferRepo(db)
	orderRepo := orderrepo.NewGormOrderRepo(db)
	settingsRepo := settings.NewGormRepository(db)
	vendorRepo := vendors.NewGormRepository(db)

	// services
	settle := settlement.NewService(orderRepo, driverRepo)
	authService := authsvc.NewAuthService(authRepo)
	driverService := driversvc.NewDriverService(driverRepo)
	orderService := ordersvc.NewOrderService(orderRepo, driverRepo, vendorRepo, settingsRepo, settle, hub, producer)
	dispatchService := dispatch.New(orderRepo, driverRepo, vendorRepo, offerRepo, settingsRepo, settle, hub, notifier, producer)

	// handlers
	authHandler := api.NewAuthHandler(authService)
	driverHandler := api.NewDriverHandler(driverService, offerRepo, orderService, settle)
	dispatchHandler := api.NewDispatchHandler(dispatchService)
	orderHandler := api.NewOrderHandler(orderService)
	adminHandler := api.NewAdminHandler(settingsRepo, driverService, settle)
	vendorHandler := api.NewVendorHandler(vendorRepo, settingsRepo)
	wsHandler := api.NewWSHandler(hub).
		WithOrders(orderRepo).
		WithDriverLocationHandler(func(driverID string, lat, lng *float64) {
			id, err := uuid.Parse(driverID)
			if err != nil {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := driverService.UpdateLocation(ctx, id, lat, lng); err != nil {
				log.Printf("ws: location update for driver %s failed: %v", driverID, err)
			}
		})

	// stale-offer sweep loop
	go func() {
		interval := time.Duration(cfg.OfferSweepSeconds) * time.Second
		for range time.Tick(interval) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if n, err := dispatchService.ExpireStaleOffers(ctx); err != nil {
				log.Println("sweep: expire stale offers failed:", err)
			} else if n > 0 {
				log.Printf("sweep: expired %d stale offers", n)
			}
			cancel()
		}
	}()

	r := gin.Default()
	r.Use(cors.Default())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Signup routes verify the Firebase ID token when the admin SDK is
	// configured; otherwise the payload uid is trusted (local dev).
	signupMW := gin.HandlerFunc(func(c *gin.Context) { c.Next() })
	if fbAuthClient != nil {
		signupMW = middleware.RequireFirebaseAuth(fbAuthClient)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.POST("/auth/login", authHandler.Login())
		v1.POST("/auth/refresh", authHandler.Refresh())
		v1.POST("/auth/signup/customer", signupMW, authHandler.SignupCustomer())
		v1.POST("/drivers/register", signupMW, driverHandler.Register())
	}

	authed := v1.Group("", middleware.RequireAuth())

	drivers := authed.Group("", middleware.RequireRoles("driver"))
	{
		drivers.PUT("/drivers/me/availability", driverHandler.SetAvailability())
		drivers.PUT("/drivers/me/location", driverHandler.UpdateLocation())
		drivers.PUT("/drivers/me/device-token", driverHandler.UpdateDeviceToken())
		drivers.GET("/drivers/me/wallet", driverHandler.Wallet())
		drivers.GET("/drivers/me/offers", driverHandler.ActiveOffers())
		drivers.GET("/drivers/me/deliveries", driverHandler.DeliveredHistory())
		drivers.POST("/offers/:order_id/accept", dispatchHandler.AcceptOffer())
		drivers.POST("/offers/:order_id/reject", dispatchHandler.RejectOffer())
		drivers.POST("/orders/:order_id/pickup", orderHandler.VerifyPickup())
		drivers.POST("/orders/:order_id/deliver", orderHandler.CompleteDelivery())
		drivers.GET("/ws/driver", wsHandler.DriverSocket())
	}

	customers := authed.Group("", middleware.RequireRoles("customer"))
	{
		customers.POST("/orders", orderHandler.CreateOrder())
		customers.POST("/orders/informal", orderHandler.CreateInformalOrder())
		customers.GET("/customers/me/orders/active", orderHandler.ActiveForCustomer())
		customers.GET("/vendors/visible", vendorHandler.ListVisible())
		customers.GET("/ws/customer", wsHandler.CustomerSocket())
	}

	admins := authed.Group("", middleware.RequireRoles("admin"))
	{
		admins.POST("/dispatch", dispatchHandler.Dispatch())
		admins.POST("/orders/:order_id/cancel", orderHandler.Cancel())
		admins.PUT("/vendor-orders/:id/status", orderHandler.UpdateVendorOrderStatus())
		admins.GET("/admin/settings", adminHandler.GetSettings())
		admins.PUT("/admin/settings", adminHandler.UpdateSettings())
		admins.POST("/admin/drivers/:driver_id/approve", adminHandler.ApproveDriver())
		admins.POST("/admin/drivers/:driver_id/suspend", adminHandler.SuspendDriver())
		admins.POST("/admin/drivers/:driver_id/clear-floating-cash", adminHandler.ClearFloatingCash())
		admins.GET("/admin/drivers/:driver_id/wallet", adminHandler.WalletOf())
	}

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("server exited:", err)
	}
}
