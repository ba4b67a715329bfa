package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	JWT       JWTConfig
	Database  DatabaseConfig
	Cors      CorsConfig
	Mail      MailConfig
	Numbering NumberingConfig
	Seed      SeedConfig
}

type AppConfig struct {
	Port          string
	MainRoutes    string
	Mode          string
	SnowflakeNode int64
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

type DatabaseConfig struct {
	Driver       string
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	MaxOpenConns int
	MaxIdleConns int
}

type CorsConfig struct {
	AllowedOrigins []string
}

// MailConfig kosong (Host == "") berarti notifikasi email dimatikan.
type MailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type NumberingConfig struct {
	MaxRetries int
}

type SeedConfig struct {
	CompanyCode   string
	CompanyName   string
	AdminUsername string
	AdminPassword string
}

// Load membaca file .env (kalau ada) lalu environment variable lewat viper.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	return &Config{
		App: AppConfig{
			Port:          v.GetString("APP_PORT"),
			MainRoutes:    v.GetString("MAIN_ROUTES"),
			Mode:          v.GetString("APP_MODE"),
			SnowflakeNode: v.GetInt64("SNOWFLAKE_NODE"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("JWT_SECRET"),
			Expiration: time.Duration(v.GetInt("JWT_EXPIRATION")) * time.Second,
		},
		Database: DatabaseConfig{
			Driver:       v.GetString("DB_DRIVER"),
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetString("DB_PORT"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			Name:         v.GetString("DB_NAME"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		},
		Cors: CorsConfig{
			AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),
		},
		Mail: MailConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			User:     v.GetString("SMTP_USER"),
			Password: v.GetString("SMTP_PASSWORD"),
			From:     v.GetString("SMTP_FROM"),
		},
		Numbering: NumberingConfig{
			MaxRetries: v.GetInt("NUMBERING_MAX_RETRIES"),
		},
		Seed: SeedConfig{
			CompanyCode:   v.GetString("SEED_COMPANY_CODE"),
			CompanyName:   v.GetString("SEED_COMPANY_NAME"),
			AdminUsername: v.GetString("SEED_ADMIN_USERNAME"),
			AdminPassword: v.GetString("SEED_ADMIN_PASSWORD"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("APP_PORT", "9000")
	v.SetDefault("MAIN_ROUTES", "/api/v1")
	v.SetDefault("APP_MODE", "debug")
	v.SetDefault("SNOWFLAKE_NODE", 1)

	// JWT
	v.SetDefault("JWT_SECRET", "engsupply_erp_secret_key")
	v.SetDefault("JWT_EXPIRATION", 86400)

	// Database
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "engsupply_erp")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("ALLOWED_ORIGINS", "http://127.0.0.1:3000")

	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_FROM", "no-reply@engsupply.local")

	v.SetDefault("NUMBERING_MAX_RETRIES", 3)

	v.SetDefault("SEED_COMPANY_CODE", "MAIN")
	v.SetDefault("SEED_COMPANY_NAME", "Main Company")
	v.SetDefault("SEED_ADMIN_USERNAME", "admin")
	v.SetDefault("SEED_ADMIN_PASSWORD", "admin123")
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
