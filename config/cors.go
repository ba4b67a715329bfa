package config

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// SetupCORS hanya mengizinkan origin yang terdaftar di ALLOWED_ORIGINS.
func SetupCORS(app *fiber.App, cfg CorsConfig) {
	if len(cfg.AllowedOrigins) == 0 {
		return
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.AllowedOrigins, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))
}
