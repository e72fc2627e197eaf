package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"nocookies/internal/config"
)

type Database struct {
	DB *gorm.DB
}

func New(cfg *config.Cfg, log *zap.Logger) (*Database, error) {
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{
		Logger:      gormlogger.Default.LogMode(gormlogger.Warn),
		PrepareStmt: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	log.Info("connected to database", zap.String("host", cfg.Database.Host), zap.String("db", cfg.Database.Name))
	return &Database{DB: db}, nil
}

func (d *Database) Close(log *zap.Logger) {
	sqlDB, err := d.DB.DB()
	if err != nil {
		log.Warn("could not get sql handle", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn("could not close database", zap.Error(err))
	}
}
