package database

import (
	"fmt"
	"log"
	"time"

	"github.com/Eursukkul/bitboletos/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects with the driver named by driver ("postgres" or "mysql"),
// migrates the schema and returns the pool.
func Open(driver, dsn string) *gorm.DB {
	dialector, err := dialectorFor(driver, dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(1 * time.Minute)

	if err := Migrate(db); err != nil {
		log.Fatalf("failed to auto-migrate: %v", err)
	}
	return db
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "", "postgres":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
}

// Models lists every table the service owns, parents first.
func Models() []any {
	return []any{
		&models.City{},
		&models.Category{},
		&models.Organizer{},
		&models.Event{},
		&models.TicketType{},
		&models.User{},
		&models.UserProfile{},
		&models.Favorite{},
		&models.Ticket{},
	}
}

// Migrate creates the tables and their indexes, including the
// idx_events_live_city_date index declared on models.Event.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
