// Package postgres opens the GORM connection that backs the inventory store.
//
// Example:
//
//	db, err := postgres.Open(postgres.DSN(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSslMode))
//	if err != nil {
//	    log.Fatalf("failed to connect database: %v", err)
//	}
//	repo := inventoryrepo.NewGormInventoryRepository(db)
package postgres

import (
	"fmt"

	"orderflow/internal/adapters/out/postgres/inventoryrepo"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DSN builds a key/value connection string.
func DSN(host, port, user, password, dbName, sslMode string) string {
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbName, sslMode)
}

// Open connects and migrates the schema.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err = Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the tables owned by this service.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&inventoryrepo.StockItemDTO{}); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
