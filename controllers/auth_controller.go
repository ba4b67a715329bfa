package controllers

import (
	"engsupply-erp/controllers/helpers"
	"engsupply-erp/middleware"
	"engsupply-erp/services"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AuthController struct {
	users    *services.UserService
	secret   string
	tokenTTL time.Duration
	log      *zap.Logger
}

func NewAuthController(users *services.UserService, secret string, tokenTTL time.Duration, log *zap.Logger) *AuthController {
	return &AuthController{users: users, secret: secret, tokenTTL: tokenTTL, log: log}
}

func (c *AuthController) Login(ctx *fiber.Ctx) error {
	var input struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	if err := helpers.ParseBody(ctx, &input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Missing required fields",
		})
	}

	user, err := c.users.Authenticate(ctx.UserContext(), input.Username, input.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		c.log.Warn("login failed", zap.String("username", input.Username), zap.String("ip", ctx.IP()))
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Invalid username or password",
		})
	}
	if err != nil {
		return helpers.Fail(ctx, err)
	}

	token, err := middleware.IssueToken(c.secret, user.ID, user.CompanyID, c.tokenTTL)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to generate token",
		})
	}

	c.log.Info("login success", zap.String("username", user.Username))
	return helpers.OK(ctx, "Login successful", fiber.Map{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   int64(c.tokenTTL.Seconds()),
		"user":         user,
	})
}

func (c *AuthController) Profile(ctx *fiber.Ctx) error {
	user, err := c.users.GetProfile(ctx.UserContext(), middleware.UserID(ctx))
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.OK(ctx, "Profile found", user)
}
