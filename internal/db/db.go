package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"clinic-logistics-backend/config"
	"clinic-logistics-backend/internal/model"
)

// Init initializes the database connection and runs migrations.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "postgres", "":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	log.Println("Running database migrations...")
	if err := db.AutoMigrate(
		&model.ExamResource{},
		&model.Appointment{},
		&model.Product{},
		&model.Supplier{},
		&model.PushSubscription{},
	); err != nil {
		return nil, fmt.Errorf("automigrate failed: %w", err)
	}

	if cfg.ApplyBookingDDL && cfg.Driver != "sqlite" {
		log.Println("Applying booking-specific DDL...")
		if err := applyBookingDDL(db); err != nil {
			return nil, err
		}
	}

	log.Println("Database initialization complete.")
	return db, nil
}

// applyBookingDDL adds the postgres indexes the conflict scans lean on.
// Serializable transactions give the correctness guarantee; these keep the
// per-dimension scans off a full table walk.
func applyBookingDDL(db *gorm.DB) error {
	ddls := []string{
		// Partial indexes over live bookings only; cancelled rows are excluded
		// from every conflict scan.
		"CREATE INDEX IF NOT EXISTS idx_appointments_resource_window ON appointments (resource_id, start_time) WHERE status <> 'CANCELLED';",
		"CREATE INDEX IF NOT EXISTS idx_appointments_requester_window ON appointments (requester_id, start_time) WHERE status <> 'CANCELLED';",
	}

	for _, ddl := range ddls {
		if err := db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("DDL failed on %q: %w", ddl, err)
		}
	}
	return nil
}
