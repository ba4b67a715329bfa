// Command processor sends reminder emails for approval requests whose current
// level has waited past its expected response time. Run it from cron.
package main

import (
	"context"
	"engsupply-erp/config"
	"engsupply-erp/controllers/idgen"
	"engsupply-erp/database"
	"engsupply-erp/logger"
	"engsupply-erp/repositories"
	"engsupply-erp/services"
	"time"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log := logger.New(cfg.App.Mode).Named("processor")
	defer log.Sync()

	idgen.Init(cfg.App.SnowflakeNode)

	db, err := database.Open(cfg.Database, cfg.App.Mode)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	if cfg.Mail.Host == "" {
		log.Warn("SMTP_HOST is empty, reminders will not be mailed")
	}

	numbering := services.NewNumberingService(db, log, cfg.Numbering.MaxRetries)
	notifier := services.NewEmailNotifier(db, cfg.Mail, log)
	approvals := services.NewApprovalService(db, numbering, services.RoleMembershipAuthorizer{}, notifier, log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	companies, err := repositories.NewCompanyRepository(db.WithContext(ctx)).ListActive()
	if err != nil {
		log.Fatal("failed to list companies", zap.Error(err))
	}

	log.Info("overdue approval scan started", zap.Int("companies", len(companies)))
	now := time.Now()
	total := 0
	for _, c := range companies {
		sent, err := approvals.RemindOverdue(ctx, c.ID, now)
		if err != nil {
			log.Error("overdue scan failed", zap.String("company", c.Code), zap.Error(err))
			continue
		}
		if sent > 0 {
			log.Info("overdue reminders sent", zap.String("company", c.Code), zap.Int("sent", sent))
		}
		total += sent
	}
	log.Info("overdue approval scan finished", zap.Int("reminders", total))
}
