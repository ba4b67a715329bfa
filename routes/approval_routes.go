package routes

import (
	"engsupply-erp/controllers"
	"engsupply-erp/middleware"
	"engsupply-erp/models"

	"github.com/gofiber/fiber/v2"
)

func SetupApprovalRoutes(app *fiber.App, prefix string, auth *middleware.AuthMiddleware, controller *controllers.ApprovalController) {
	workflows := app.Group(prefix+"/approvals/workflows", auth.Authenticate)
	workflows.Get("/", controller.ListWorkflows)
	workflows.Post("/", auth.CheckPermission(models.PermApprovalsConfigure), controller.CreateWorkflow)
	workflows.Get("/:id", controller.GetWorkflow)
	workflows.Post("/:id/deactivate", auth.CheckPermission(models.PermApprovalsConfigure), controller.DeactivateWorkflow)

	requests := app.Group(prefix+"/approvals/requests", auth.Authenticate)
	requests.Get("/", controller.ListRequests)
	requests.Post("/", auth.CheckPermission(models.PermApprovalsRequest), controller.CreateRequest)
	requests.Get("/pending", controller.Pending)
	requests.Get("/overdue", controller.Overdue)
	requests.Get("/:id", controller.GetRequest)
	requests.Get("/:id/history", controller.History)
	requests.Post("/:id/start", controller.Start)
	requests.Post("/:id/approve", controller.Approve)
	requests.Post("/:id/reject", controller.Reject)
	requests.Post("/:id/cancel", controller.Cancel)
}
