package routes

import (
	"engsupply-erp/controllers"
	"engsupply-erp/middleware"
	"engsupply-erp/models"

	"github.com/gofiber/fiber/v2"
)

func SetupPricingRoutes(app *fiber.App, prefix string, auth *middleware.AuthMiddleware, controller *controllers.PricingController) {
	manage := auth.CheckPermission(models.PermPricingManage)

	api := app.Group(prefix+"/pricing", auth.Authenticate)
	api.Post("/calculate", controller.Calculate)
	api.Post("/compare", controller.Compare)
	api.Get("/price-lists", controller.ListPriceLists)
	api.Post("/price-lists", manage, controller.CreatePriceList)
	api.Post("/price-lists/:id/items", manage, controller.AddPriceItem)
	api.Post("/price-lists/:id/default", manage, controller.SetDefault)
	api.Put("/price-list-items/:id/price", manage, controller.UpdateItemPrice)
	api.Get("/price-list-items/:id/history", controller.PriceHistory)
	api.Get("/rules", controller.ListRules)
	api.Post("/rules", manage, controller.CreateRule)
}
