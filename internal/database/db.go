package database

import (
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/zaqqye/salon_backoffice/internal/config"
	"github.com/zaqqye/salon_backoffice/internal/models"
)

func Connect(cfg *config.Config) (*gorm.DB, error) {
	return Open(postgres.Open(cfg.DSN()))
}

// Open connects through any gorm dialector. Timestamps are kept in UTC.
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	return gorm.Open(dialector, &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Warn),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Staff{},
		&models.Service{},
		&models.Combo{},
		&models.ComboItem{},
		&models.Appointment{},
		&models.AppointmentService{},
		&models.InventoryItem{},
		&models.InventoryTransaction{},
		&models.Attendance{},
		&models.Holiday{},
	)
}
