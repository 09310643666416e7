package database

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/zaqqye/salon_backoffice/internal/config"
	"github.com/zaqqye/salon_backoffice/internal/logger"
	"github.com/zaqqye/salon_backoffice/internal/models"
	"github.com/zaqqye/salon_backoffice/internal/utils"
)

// SeedAdmin creates the first operator account when no admin exists yet.
func SeedAdmin(db *gorm.DB, cfg *config.Config, log logger.Logger) error {
	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := utils.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}
	admin := models.User{
		FullName: cfg.AdminFullName,
		Email:    cfg.AdminEmail,
		Password: hashed,
		Role:     models.RoleAdmin,
		Active:   true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Info("seeded initial admin", "email", admin.Email)
	return nil
}

// SeedCatalog inserts a starter service menu into an empty database.
func SeedCatalog(db *gorm.DB, log logger.Logger) error {
	var count int64
	if err := db.Model(&models.Service{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	services := []models.Service{
		{Name: "Haircut", Duration: 30, Price: decimal.NewFromInt(300), Category: "Hair", Gender: "unisex", Active: true},
		{Name: "Beard Trim", Duration: 15, Price: decimal.NewFromInt(150), Category: "Hair", Gender: "male", Active: true},
		{Name: "Hair Colour", Duration: 90, Price: decimal.NewFromInt(1500), Category: "Hair", Gender: "unisex", Active: true},
		{Name: "Manicure", Duration: 45, Price: decimal.NewFromInt(500), Category: "Nails", Gender: "unisex", Active: true},
		{Name: "Facial", Duration: 60, Price: decimal.NewFromInt(900), Category: "Skin", Gender: "unisex", Active: true},
		{Name: "Head Massage", Duration: 20, Price: decimal.NewFromInt(250), Category: "Massage", Gender: "unisex", Active: true},
	}
	if err := db.Create(&services).Error; err != nil {
		return err
	}
	log.Info("seeded service catalog", "services", len(services))
	return nil
}
