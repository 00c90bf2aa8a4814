package main

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/sevabazar/delivery-backend/entity"
)

func setupDatabase(cfg Config) *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s user=%s password='%s' dbname=%s port=%d sslmode=%s",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect database:", err)
	}

	// Ensure required extensions for UUID are present (if using Postgres with uuid_generate_v4)
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		log.Println("warning: failed to ensure uuid-ossp extension:", err)
	}

	if err := db.AutoMigrate(
		&entity.User{},
		&entity.Driver{},
		&entity.Customer{},
		&entity.Admin{},
		&entity.Vendor{},
		&entity.Order{},
		&entity.VendorOrder{},
		&entity.OrderItem{},
		&entity.InformalOrder{},
		&entity.Offer{},
		&entity.Settings{},
	); err != nil {
		log.Fatal("failed to run migrations:", err)
	}
	return db
}
