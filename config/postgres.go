package config

import (
	"errors"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/castlehq/checkmate/internal/models"
)

// NewPostgres opens the relational store and migrates the four tables.
func NewPostgres(uri string) (*gorm.DB, error) {
	if uri == "" {
		return nil, errors.New("postgres uri is empty")
	}
	db, err := gorm.Open(postgres.Open(uri), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// Connection pooling settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Resume{},
		&models.Interview{},
		&models.InterviewMessage{},
	); err != nil {
		return nil, err
	}

	return db, nil
}
