package routes

import (
	"engsupply-erp/controllers"
	"engsupply-erp/middleware"
	"engsupply-erp/models"

	"github.com/gofiber/fiber/v2"
)

func SetupNumberingRoutes(app *fiber.App, prefix string, auth *middleware.AuthMiddleware, controller *controllers.NumberingController) {
	api := app.Group(prefix+"/numbering", auth.Authenticate)
	api.Get("/", controller.List)
	api.Post("/", auth.CheckPermission(models.PermNumberingManage), controller.Create)
	api.Put("/:type", auth.CheckPermission(models.PermNumberingManage), controller.Update)
	api.Get("/:type/preview", controller.Preview)
	api.Post("/:type/next", auth.CheckPermission(models.PermNumberingIssue), controller.Next)
	api.Post("/:type/reset", auth.CheckPermission(models.PermNumberingManage), controller.Reset)
}
