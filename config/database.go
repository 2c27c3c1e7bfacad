package config

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/restaurant-portal/models"
	"github.com/yeremiapane/restaurant-portal/utils"
)

// InitDB opens the local database holding carts, wizard drafts and receipts
// awaiting review.
func InitDB(cfg *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "mysql":
		dialector = mysql.Open(cfg.DBDSN)
	case "sqlite", "":
		dialector = sqlite.Open(cfg.DBDSN)
	default:
		return nil, fmt.Errorf("config: unsupported DB driver %q", cfg.DBDriver)
	}

	gormCfg := &gorm.Config{}
	if cfg.GinMode == "release" {
		gormCfg.Logger = logger.Default.LogMode(logger.Silent)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", cfg.DBDriver, err)
	}
	return db, nil
}

// AutoMigrate creates or updates the local tables.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Cart{},
		&models.CartItem{},
		&models.ReservationDraft{},
		&models.PendingReceipt{},
	)
	if err != nil {
		return fmt.Errorf("config: automigrate: %w", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
	return nil
}
