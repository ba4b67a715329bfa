package routes

import (
	"engsupply-erp/controllers"
	"engsupply-erp/middleware"
	"engsupply-erp/models"

	"github.com/gofiber/fiber/v2"
)

func SetupUomRoutes(app *fiber.App, prefix string, auth *middleware.AuthMiddleware, controller *controllers.UomController) {
	api := app.Group(prefix+"/uoms", auth.Authenticate)
	api.Get("/groups", controller.ListGroups)
	api.Post("/convert", controller.Convert)
	api.Post("/conversions", auth.CheckPermission(models.PermUomImport), controller.CreateConversion)
	api.Get("/conversions/export", controller.ExportConversions)
	api.Post("/conversions/import", auth.CheckPermission(models.PermUomImport), controller.ImportConversions)
}
