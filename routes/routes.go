package routes

import (
	"engsupply-erp/controllers"
	"engsupply-erp/middleware"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Auth      *controllers.AuthController
	Numbering *controllers.NumberingController
	Approval  *controllers.ApprovalController
	Pricing   *controllers.PricingController
	Uom       *controllers.UomController
}

// Setup mendaftarkan semua route di bawah prefix (MAIN_ROUTES).
func Setup(app *fiber.App, prefix string, auth *middleware.AuthMiddleware, h Handlers) {
	app.Get(prefix+"/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	SetupAuthRoutes(app, prefix, auth, h.Auth)
	SetupNumberingRoutes(app, prefix, auth, h.Numbering)
	SetupApprovalRoutes(app, prefix, auth, h.Approval)
	SetupPricingRoutes(app, prefix, auth, h.Pricing)
	SetupUomRoutes(app, prefix, auth, h.Uom)
}
