package main

import (
	"context"
	"engsupply-erp/apperrors"
	"engsupply-erp/config"
	"engsupply-erp/controllers"
	"engsupply-erp/controllers/idgen"
	"engsupply-erp/database"
	"engsupply-erp/logger"
	"engsupply-erp/middleware"
	"engsupply-erp/routes"
	"engsupply-erp/services"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log := logger.New(cfg.App.Mode)
	defer log.Sync()

	idgen.Init(cfg.App.SnowflakeNode)

	// Pastikan database ada
	if err := database.EnsureDatabaseExists(cfg.Database, log); err != nil {
		log.Fatal("failed to ensure database", zap.Error(err))
	}

	db, err := database.Open(cfg.Database, cfg.App.Mode)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Auto migrate models
	if err := database.Migrate(db); err != nil {
		log.Fatal("failed to auto migrate", zap.Error(err))
	}
	if err := database.RunSeeders(db, cfg.Seed, log); err != nil {
		log.Fatal("failed to seed database", zap.Error(err))
	}

	// Services
	users := services.NewUserService(db)
	numbering := services.NewNumberingService(db, log, cfg.Numbering.MaxRetries)
	notifier := services.NewEmailNotifier(db, cfg.Mail, log)
	approvals := services.NewApprovalService(db, numbering, services.RoleMembershipAuthorizer{}, notifier, log)
	uoms := services.NewUomService(db, log)
	excel := services.NewUomExcelService(db, uoms, log)
	pricing := services.NewPricingService(db, uoms, log)

	app := fiber.New(fiber.Config{
		AppName:      "engsupply-erp",
		BodyLimit:    10 * 1024 * 1024,
		ErrorHandler: errorHandler(log),
	})
	app.Use(middleware.RequestLogger(log))
	config.SetupCORS(app, cfg.Cors)

	auth := middleware.NewAuthMiddleware(cfg.JWT.Secret, users, log)
	routes.Setup(app, cfg.App.MainRoutes, auth, routes.Handlers{
		Auth:      controllers.NewAuthController(users, cfg.JWT.Secret, cfg.JWT.Expiration, log),
		Numbering: controllers.NewNumberingController(numbering),
		Approval:  controllers.NewApprovalController(approvals),
		Pricing:   controllers.NewPricingController(pricing),
		Uom:       controllers.NewUomController(uoms, excel),
	})

	go func() {
		log.Info("server started", zap.String("port", cfg.App.Port))
		if err := app.Listen(":" + cfg.App.Port); err != nil {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
}

func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if fe, ok := err.(*fiber.Error); ok {
			return c.Status(fe.Code).JSON(fiber.Map{"success": false, "message": fe.Message})
		}
		log.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(apperrors.HTTPStatus(err)).JSON(fiber.Map{
			"success": false,
			"message": apperrors.Message(err),
		})
	}
}
