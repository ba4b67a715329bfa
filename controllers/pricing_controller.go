package controllers

import (
	"engsupply-erp/controllers/helpers"
	"engsupply-erp/middleware"
	"engsupply-erp/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type PricingController struct {
	service *services.PricingService
}

func NewPricingController(service *services.PricingService) *PricingController {
	return &PricingController{service: service}
}

func (c *PricingController) Calculate(ctx *fiber.Ctx) error {
	var query services.PriceQuery
	if err := helpers.ParseBody(ctx, &query); err != nil {
		return helpers.Fail(ctx, err)
	}
	result, err := c.service.CalculatePrice(ctx.UserContext(), middleware.CompanyID(ctx), query)
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.OK(ctx, "Price calculated", result)
}

func (c *PricingController) Compare(ctx *fiber.Ctx) error {
	var query services.PriceQuery
	if err := helpers.ParseBody(ctx, &query); err != nil {
		return helpers.Fail(ctx, err)
	}
	result, err := c.service.ComparePriceLists(ctx.UserContext(), middleware.CompanyID(ctx), query)
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.OK(ctx, "Price lists compared", result)
}

func (c *PricingController) ListPriceLists(ctx *fiber.Ctx) error {
	lists, err := c.service.ListPriceLists(ctx.UserContext(), middleware.CompanyID(ctx))
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.OK(ctx, "Price lists found", lists)
}

func (c *PricingController) CreatePriceList(ctx *fiber.Ctx) error {
	var input services.PriceListInput
	if err := helpers.ParseBody(ctx, &input); err != nil {
		return helpers.Fail(ctx, err)
	}
	pl, err := c.service.CreatePriceList(ctx.UserContext(), middleware.CompanyID(ctx), middleware.UserID(ctx), input)
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.Created(ctx, "Price list created", pl)
}

func (c *PricingController) AddPriceItem(ctx *fiber.Ctx) error {
	id, err := helpers.ParamID(ctx, "id")
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	var input services.PriceItemInput
	if err := helpers.ParseBody(ctx, &input); err != nil {
		return helpers.Fail(ctx, err)
	}
	row, err := c.service.AddPriceItem(ctx.UserContext(), middleware.CompanyID(ctx), id, middleware.UserID(ctx), input)
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.Created(ctx, "Price added", row)
}

func (c *PricingController) SetDefault(ctx *fiber.Ctx) error {
	id, err := helpers.ParamID(ctx, "id")
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	pl, err := c.service.SetDefault(ctx.UserContext(), middleware.CompanyID(ctx), id)
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.OK(ctx, "Default price list set", pl)
}

func (c *PricingController) UpdateItemPrice(ctx *fiber.Ctx) error {
	id, err := helpers.ParamID(ctx, "id")
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	var input struct {
		Price  decimal.Decimal `json:"price"`
		Reason string          `json:"reason"`
	}
	if err := helpers.ParseBody(ctx, &input); err != nil {
		return helpers.Fail(ctx, err)
	}
	h, err := c.service.UpdateItemPrice(ctx.UserContext(), middleware.CompanyID(ctx), id, middleware.UserID(ctx), input.Price, input.Reason)
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.OK(ctx, "Price updated", h)
}

func (c *PricingController) PriceHistory(ctx *fiber.Ctx) error {
	id, err := helpers.ParamID(ctx, "id")
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	rows, err := c.service.PriceHistory(ctx.UserContext(), middleware.CompanyID(ctx), id)
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.OK(ctx, "Price history", rows)
}

func (c *PricingController) ListRules(ctx *fiber.Ctx) error {
	rules, err := c.service.ListRules(ctx.UserContext(), middleware.CompanyID(ctx))
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.OK(ctx, "Pricing rules found", rules)
}

func (c *PricingController) CreateRule(ctx *fiber.Ctx) error {
	var input services.RuleInput
	if err := helpers.ParseBody(ctx, &input); err != nil {
		return helpers.Fail(ctx, err)
	}
	rule, err := c.service.CreateRule(ctx.UserContext(), middleware.CompanyID(ctx), middleware.UserID(ctx), input)
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.Created(ctx, "Pricing rule created", rule)
}
