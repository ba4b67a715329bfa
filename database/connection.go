package database

import (
	"engsupply-erp/config"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open membuka koneksi gorm sesuai DB_DRIVER dan mengatur connection pool.
func Open(cfg config.DatabaseConfig, mode string) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg, cfg.Name)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, GormConfig(mode))
	if err != nil {
		return nil, fmt.Errorf("open %s database %s: %w", cfg.Driver, cfg.Name, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// GormConfig is shared by the real connection and the test database.
// Foreign keys stay in the application: uom_groups and uoms reference each other.
func GormConfig(mode string) *gorm.Config {
	level := logger.Warn
	if mode == "debug" {
		level = logger.Info
	}
	return &gorm.Config{
		Logger:                                   logger.Default.LogMode(level),
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
	}
}

func dialectorFor(cfg config.DatabaseConfig, dbName string) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			cfg.Host, cfg.User, cfg.Password, dbName, cfg.Port)
		return postgres.Open(dsn), nil
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, dbName)
		return mysql.Open(dsn), nil
	case "mssql":
		dsn := fmt.Sprintf("sqlserver://%s:%s@%s:%s?database=%s",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, dbName)
		return sqlserver.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s", cfg.Driver)
	}
}

// EnsureDatabaseExists membuat database kalau belum ada, lewat koneksi ke database sistem.
func EnsureDatabaseExists(cfg config.DatabaseConfig, log *zap.Logger) error {
	var systemDB string
	switch cfg.Driver {
	case "postgres":
		systemDB = "postgres"
	case "mssql":
		systemDB = "master"
	}

	dialector, err := dialectorFor(cfg, systemDB)
	if err != nil {
		return err
	}
	db, err := gorm.Open(dialector, GormConfig(""))
	if err != nil {
		return fmt.Errorf("connect to DB server: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	switch cfg.Driver {
	case "postgres":
		var exists bool
		if err := db.Raw("SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = ?)", cfg.Name).Scan(&exists).Error; err != nil {
			return err
		}
		if exists {
			return nil
		}
		err = db.Exec("CREATE DATABASE " + cfg.Name).Error
	case "mysql":
		err = db.Exec("CREATE DATABASE IF NOT EXISTS " + cfg.Name).Error
	case "mssql":
		err = db.Exec("IF DB_ID('" + cfg.Name + "') IS NULL CREATE DATABASE " + cfg.Name).Error
	}
	if err != nil {
		return fmt.Errorf("create database %s: %w", cfg.Name, err)
	}

	log.Info("database ready", zap.String("driver", cfg.Driver), zap.String("name", cfg.Name))
	return nil
}
