// internal/database/connection.go
package database

import (
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/assetverse/assetverse-backend/internal/config"
	"github.com/assetverse/assetverse-backend/internal/models"
)

var DB *gorm.DB

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var err error
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		}
	}

	// Connect to database
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection established successfully")
	return DB, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	} else {
		log.Println("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	// Enable UUID extension
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		return fmt.Errorf("failed to create UUID extension: %w", err)
	}

	if err := AutoMigrate(db); err != nil {
		return err
	}

	// Create indexes
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// AutoMigrate creates or updates the schema for every model. Split out from
// RunMigrations so tests can migrate without postgres-only statements.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Employee{},
		&models.Asset{},
		&models.Request{},
		&models.Assignment{},
		&models.Affiliation{},
		&models.Package{},
		&models.Payment{},
		&models.Notification{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)",
		"CREATE INDEX IF NOT EXISTS idx_users_role ON users(role)",

		// Asset indexes
		"CREATE INDEX IF NOT EXISTS idx_assets_hr ON assets(hr_id)",
		"CREATE INDEX IF NOT EXISTS idx_assets_type ON assets(type)",
		"CREATE INDEX IF NOT EXISTS idx_assets_available ON assets(available_quantity)",
		"CREATE INDEX IF NOT EXISTS idx_assets_created_at ON assets(created_at DESC)",

		// Request indexes
		"CREATE INDEX IF NOT EXISTS idx_requests_employee ON requests(employee_id)",
		"CREATE INDEX IF NOT EXISTS idx_requests_hr_status ON requests(hr_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_requests_created_at ON requests(created_at DESC)",

		// Assignment indexes
		"CREATE INDEX IF NOT EXISTS idx_assignments_employee ON assignments(employee_id)",
		"CREATE INDEX IF NOT EXISTS idx_assignments_hr_status ON assignments(hr_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_assignments_asset ON assignments(asset_id)",

		// Affiliation indexes
		"CREATE INDEX IF NOT EXISTS idx_affiliations_hr_status ON affiliations(hr_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_affiliations_employee_status ON affiliations(employee_id, status)",

		// Payment indexes
		"CREATE INDEX IF NOT EXISTS idx_payments_hr ON payments(hr_id)",
		"CREATE INDEX IF NOT EXISTS idx_payments_paid_at ON payments(paid_at DESC)",

		// Audit indexes
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_user_action ON audit_logs(user_id, action)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at DESC)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			log.Printf("Warning: Failed to create index: %s, Error: %v", index, err)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// Seed initial data
func SeedInitialData(db *gorm.DB) error {
	log.Println("Seeding initial data...")

	defaultPackages := []models.Package{
		{
			Name:          "Basic",
			Price:         decimal.NewFromInt(5),
			EmployeeLimit: 5,
			Description:   "Starter package for small teams",
		},
		{
			Name:          "Standard",
			Price:         decimal.NewFromInt(8),
			EmployeeLimit: 10,
			Description:   "Growing teams with regular asset turnover",
		},
		{
			Name:          "Premium",
			Price:         decimal.NewFromInt(15),
			EmployeeLimit: 20,
			Description:   "Large rosters and high approval volume",
		},
	}

	for _, pkg := range defaultPackages {
		var count int64
		db.Model(&models.Package{}).Where("name = ?", pkg.Name).Count(&count)

		if count == 0 {
			if err := db.Create(&pkg).Error; err != nil {
				log.Printf("Warning: Failed to create package %s: %v", pkg.Name, err)
			}
		}
	}

	log.Println("Initial data seeding completed")
	return nil
}

// Transaction helper
func WithTransaction(db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
