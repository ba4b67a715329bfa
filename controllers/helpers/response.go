package helpers

import (
	"engsupply-erp/apperrors"
	"engsupply-erp/types"
	"fmt"
	"strings"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

func OK(ctx *fiber.Ctx, message string, data any) error {
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func Created(ctx *fiber.Ctx, message string, data any) error {
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

// Fail menerjemahkan error service ke status HTTP; error internal tidak dibocorkan.
func Fail(ctx *fiber.Ctx, err error) error {
	return ctx.Status(apperrors.HTTPStatus(err)).JSON(fiber.Map{
		"success": false,
		"message": apperrors.Message(err),
		"error":   string(apperrors.KindOf(err)),
	})
}

func BadRequest(ctx *fiber.Ctx, message string) error {
	return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

// ParseBody membaca JSON body lalu menjalankan validator.
func ParseBody(ctx *fiber.Ctx, out any) error {
	if err := ctx.BodyParser(out); err != nil {
		return apperrors.Validation("invalid request body: %v", err)
	}
	return Validate(out)
}

func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
			}
			return apperrors.Validation("%s", strings.Join(msgs, "; "))
		}
		return apperrors.Validation("%v", err)
	}
	return nil
}

func ParamID(ctx *fiber.Ctx, name string) (types.SnowflakeID, error) {
	id, err := types.ParseSnowflakeID(ctx.Params(name))
	if err != nil {
		return 0, apperrors.Validation("invalid %s", name)
	}
	return id, nil
}
