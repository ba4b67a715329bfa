package controllers

import (
	"engsupply-erp/controllers/helpers"
	"engsupply-erp/middleware"
	"engsupply-erp/services"
	"engsupply-erp/types"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type UomController struct {
	uoms  *services.UomService
	excel *services.UomExcelService
}

func NewUomController(uoms *services.UomService, excel *services.UomExcelService) *UomController {
	return &UomController{uoms: uoms, excel: excel}
}

func (c *UomController) ListGroups(ctx *fiber.Ctx) error {
	groups, err := c.uoms.ListGroups(ctx.UserContext(), middleware.CompanyID(ctx))
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.OK(ctx, "Unit groups found", groups)
}

func (c *UomController) Convert(ctx *fiber.Ctx) error {
	var input struct {
		FromUomID types.SnowflakeID  `json:"from_uom_id" validate:"required"`
		ToUomID   types.SnowflakeID  `json:"to_uom_id" validate:"required"`
		Quantity  decimal.Decimal    `json:"quantity"`
		ItemID    *types.SnowflakeID `json:"item_id"`
		VariantID *types.SnowflakeID `json:"variant_id"`
	}
	if err := helpers.ParseBody(ctx, &input); err != nil {
		return helpers.Fail(ctx, err)
	}
	qty, err := c.uoms.Convert(ctx.UserContext(), middleware.CompanyID(ctx), input.FromUomID, input.ToUomID, input.Quantity, input.ItemID, input.VariantID)
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.OK(ctx, "Quantity converted", fiber.Map{"quantity": qty})
}

func (c *UomController) CreateConversion(ctx *fiber.Ctx) error {
	var input services.ConversionInput
	if err := helpers.ParseBody(ctx, &input); err != nil {
		return helpers.Fail(ctx, err)
	}
	conv, err := c.uoms.CreateConversion(ctx.UserContext(), middleware.CompanyID(ctx), middleware.UserID(ctx), input)
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.Created(ctx, "Conversion created", conv)
}

// Handler untuk generate dan kirim file Excel
func (c *UomController) ExportConversions(ctx *fiber.Ctx) error {
	var groupID *types.SnowflakeID
	if raw := ctx.Query("group_id"); raw != "" {
		id, err := types.ParseSnowflakeID(raw)
		if err != nil {
			return helpers.BadRequest(ctx, "invalid group_id")
		}
		groupID = &id
	}

	f, err := c.excel.ExportConversions(ctx.UserContext(), middleware.CompanyID(ctx), groupID)
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	defer f.Close()

	filename := fmt.Sprintf("uom_conversions_%s.xlsx", time.Now().Format("20060102_150405"))
	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if err := f.Write(ctx.Response().BodyWriter()); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).SendString("Failed to generate Excel")
	}
	return nil
}

func (c *UomController) ImportConversions(ctx *fiber.Ctx) error {
	file, err := ctx.FormFile("file")
	if err != nil {
		return helpers.BadRequest(ctx, "file is required")
	}
	if !strings.HasSuffix(strings.ToLower(file.Filename), ".xlsx") {
		return helpers.BadRequest(ctx, "Only Excel files (.xlsx) are allowed")
	}

	fileContent, err := file.Open()
	if err != nil {
		return helpers.BadRequest(ctx, "Failed to open file")
	}
	defer fileContent.Close()

	skip := ctx.QueryBool("skip_duplicates", true)
	result, err := c.excel.ImportConversions(ctx.UserContext(), middleware.CompanyID(ctx), middleware.UserID(ctx), fileContent, skip)
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.OK(ctx, "Import finished", result)
}
