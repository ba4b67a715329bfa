package controllers

import (
	"engsupply-erp/controllers/helpers"
	"engsupply-erp/middleware"
	"engsupply-erp/models"
	"engsupply-erp/services"
	"time"

	"github.com/gofiber/fiber/v2"
)

type ApprovalController struct {
	service *services.ApprovalService
}

func NewApprovalController(service *services.ApprovalService) *ApprovalController {
	return &ApprovalController{service: service}
}

// Workflows

func (c *ApprovalController) ListWorkflows(ctx *fiber.Ctx) error {
	workflows, err := c.service.ListWorkflows(ctx.UserContext(), middleware.CompanyID(ctx), models.DocumentKind(ctx.Query("document_type")))
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.OK(ctx, "Workflows found", workflows)
}

func (c *ApprovalController) CreateWorkflow(ctx *fiber.Ctx) error {
	var input services.WorkflowInput
	if err := helpers.ParseBody(ctx, &input); err != nil {
		return helpers.Fail(ctx, err)
	}
	wf, err := c.service.CreateWorkflow(ctx.UserContext(), middleware.CompanyID(ctx), middleware.UserID(ctx), input)
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.Created(ctx, "Workflow created", wf)
}

func (c *ApprovalController) GetWorkflow(ctx *fiber.Ctx) error {
	id, err := helpers.ParamID(ctx, "id")
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	wf, err := c.service.GetWorkflow(ctx.UserContext(), middleware.CompanyID(ctx), id)
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.OK(ctx, "Workflow found", wf)
}

func (c *ApprovalController) DeactivateWorkflow(ctx *fiber.Ctx) error {
	id, err := helpers.ParamID(ctx, "id")
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	if err := c.service.DeactivateWorkflow(ctx.UserContext(), middleware.CompanyID(ctx), id); err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.OK(ctx, "Workflow deactivated", nil)
}

// Requests

func (c *ApprovalController) ListRequests(ctx *fiber.Ctx) error {
	requests, err := c.service.ListRequests(ctx.UserContext(), middleware.CompanyID(ctx), models.ApprovalStatus(ctx.Query("status")))
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.OK(ctx, "Requests found", requests)
}

func (c *ApprovalController) CreateRequest(ctx *fiber.Ctx) error {
	var input services.RequestInput
	if err := helpers.ParseBody(ctx, &input); err != nil {
		return helpers.Fail(ctx, err)
	}
	req, err := c.service.CreateRequest(ctx.UserContext(), middleware.CompanyID(ctx), middleware.UserID(ctx), input)
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.Created(ctx, "Approval request created", req)
}

func (c *ApprovalController) Pending(ctx *fiber.Ctx) error {
	requests, err := c.service.PendingForUser(ctx.UserContext(), middleware.CompanyID(ctx), middleware.UserID(ctx))
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.OK(ctx, "Requests waiting for you", requests)
}

func (c *ApprovalController) Overdue(ctx *fiber.Ctx) error {
	overdue, err := c.service.OverdueRequests(ctx.UserContext(), middleware.CompanyID(ctx), time.Now())
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.OK(ctx, "Overdue requests", overdue)
}

func (c *ApprovalController) GetRequest(ctx *fiber.Ctx) error {
	id, err := helpers.ParamID(ctx, "id")
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	req, err := c.service.GetRequest(ctx.UserContext(), middleware.CompanyID(ctx), id)
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.OK(ctx, "Request found", req)
}

func (c *ApprovalController) History(ctx *fiber.Ctx) error {
	id, err := helpers.ParamID(ctx, "id")
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	rows, err := c.service.History(ctx.UserContext(), middleware.CompanyID(ctx), id)
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.OK(ctx, "Request history", rows)
}

func (c *ApprovalController) Start(ctx *fiber.Ctx) error {
	id, err := helpers.ParamID(ctx, "id")
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	req, err := c.service.StartApprovalProcess(ctx.UserContext(), middleware.CompanyID(ctx), id, middleware.UserID(ctx))
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.OK(ctx, "Approval process started", req)
}

type decisionInput struct {
	Comments string `json:"comments"`
}

func (c *ApprovalController) Approve(ctx *fiber.Ctx) error {
	id, err := helpers.ParamID(ctx, "id")
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	var input decisionInput
	if len(ctx.Body()) > 0 {
		if err := helpers.ParseBody(ctx, &input); err != nil {
			return helpers.Fail(ctx, err)
		}
	}
	req, err := c.service.ApproveCurrentLevel(ctx.UserContext(), middleware.CompanyID(ctx), id, middleware.UserID(ctx), input.Comments)
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.OK(ctx, "Request approved at current level", req)
}

func (c *ApprovalController) Reject(ctx *fiber.Ctx) error {
	id, err := helpers.ParamID(ctx, "id")
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	var input struct {
		Reason string `json:"reason" validate:"required"`
	}
	if err := helpers.ParseBody(ctx, &input); err != nil {
		return helpers.Fail(ctx, err)
	}
	req, err := c.service.Reject(ctx.UserContext(), middleware.CompanyID(ctx), id, middleware.UserID(ctx), input.Reason)
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.OK(ctx, "Request rejected", req)
}

func (c *ApprovalController) Cancel(ctx *fiber.Ctx) error {
	id, err := helpers.ParamID(ctx, "id")
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	var input struct {
		Reason string `json:"reason"`
	}
	if len(ctx.Body()) > 0 {
		if err := helpers.ParseBody(ctx, &input); err != nil {
			return helpers.Fail(ctx, err)
		}
	}
	req, err := c.service.Cancel(ctx.UserContext(), middleware.CompanyID(ctx), id, middleware.UserID(ctx), input.Reason)
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.OK(ctx, "Request cancelled", req)
}
