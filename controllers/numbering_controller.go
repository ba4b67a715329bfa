package controllers

import (
	"engsupply-erp/controllers/helpers"
	"engsupply-erp/middleware"
	"engsupply-erp/models"
	"engsupply-erp/services"

	"github.com/gofiber/fiber/v2"
)

type NumberingController struct {
	service *services.NumberingService
}

func NewNumberingController(service *services.NumberingService) *NumberingController {
	return &NumberingController{service: service}
}

func (c *NumberingController) List(ctx *fiber.Ctx) error {
	seqs, err := c.service.List(ctx.UserContext(), middleware.CompanyID(ctx))
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.OK(ctx, "Numbering sequences found", seqs)
}

func (c *NumberingController) Create(ctx *fiber.Ctx) error {
	var input services.SequenceInput
	if err := helpers.ParseBody(ctx, &input); err != nil {
		return helpers.Fail(ctx, err)
	}
	seq, err := c.service.Create(ctx.UserContext(), middleware.CompanyID(ctx), middleware.UserID(ctx), input)
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.Created(ctx, "Numbering sequence created", seq)
}

func (c *NumberingController) Update(ctx *fiber.Ctx) error {
	docType := models.DocumentType(ctx.Params("type"))
	input := services.SequenceInput{DocumentType: docType}
	if err := helpers.ParseBody(ctx, &input); err != nil {
		return helpers.Fail(ctx, err)
	}
	seq, err := c.service.Update(ctx.UserContext(), middleware.CompanyID(ctx), middleware.UserID(ctx), docType, input)
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.OK(ctx, "Numbering sequence updated", seq)
}

func (c *NumberingController) Preview(ctx *fiber.Ctx) error {
	number, err := c.service.Preview(ctx.UserContext(), middleware.CompanyID(ctx), models.DocumentType(ctx.Params("type")))
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.OK(ctx, "Next number preview", fiber.Map{"number": number})
}

func (c *NumberingController) Next(ctx *fiber.Ctx) error {
	number, err := c.service.Next(ctx.UserContext(), middleware.CompanyID(ctx), models.DocumentType(ctx.Params("type")))
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.OK(ctx, "Number issued", fiber.Map{"number": number})
}

func (c *NumberingController) Reset(ctx *fiber.Ctx) error {
	var input struct {
		Start int64 `json:"start" validate:"required,gte=1"`
	}
	if err := helpers.ParseBody(ctx, &input); err != nil {
		return helpers.Fail(ctx, err)
	}
	docType := models.DocumentType(ctx.Params("type"))
	if err := c.service.Reset(ctx.UserContext(), middleware.CompanyID(ctx), docType, input.Start); err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.OK(ctx, "Numbering sequence reset", fiber.Map{"document_type": docType, "next_number": input.Start})
}
