package routes

import (
	"engsupply-erp/controllers"
	"engsupply-erp/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App, prefix string, auth *middleware.AuthMiddleware, controller *controllers.AuthController) {
	api := app.Group(prefix + "/auth")
	api.Post("/login", controller.Login)
	api.Get("/profile", auth.Authenticate, controller.Profile)
}
