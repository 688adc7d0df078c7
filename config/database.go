package config

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"portal-cms/logger"
	"portal-cms/models"
)

// InitDB opens the PostgreSQL connection and sizes the pool.
func InitDB(cfg DatabaseConfig, env string) (*gorm.DB, error) {
	logLevel := gormlogger.Warn
	if env == "development" || env == "dev" {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         logger.NewGormLogger(logLevel),
		TranslateError: true,
		NowFunc:        nowUTC,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

// Migrate creates or updates the content and history tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.ContentItem{}, &models.ContentVersion{})
}
