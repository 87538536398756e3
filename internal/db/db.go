package db

import (
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/seatwise/reserver/internal/config"
	"github.com/seatwise/reserver/internal/logging"
	"github.com/seatwise/reserver/internal/models"
)

func NewDB(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
	})
	if err != nil {
		logging.Error.Fatalf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		logging.Error.Fatalf("failed to get sql.DB: %v", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := Migrate(db); err != nil {
		logging.Error.Fatalf("failed to migrate: %v", err)
	}

	return db
}

// Migrate creates or updates the schema. Also used by tests against
// the sqlite driver.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Location{},
		&models.User{},
		&models.Table{},
		&models.Booking{},
		&models.Customer{},
		&models.Setting{},
		&models.AuditLog{},
	)
}
