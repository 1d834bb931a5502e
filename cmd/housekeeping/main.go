// Housekeeping runs the storage reclamation jobs on a schedule. It is
// a separate process from the serving binary, so the API path never
// carries sweep load.
package main

import (
	"context"

	cron "github.com/robfig/cron/v3"

	"github.com/talentsift/auth-service/internal/app"
	"github.com/talentsift/auth-service/internal/config"
	"github.com/talentsift/auth-service/internal/repositories"
	"github.com/talentsift/auth-service/internal/services"
	"github.com/talentsift/auth-service/internal/utils"
)

func main() {
	utils.InitLogger(config.AppName + "-housekeeping")
	cfg := config.LoadConfig()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize application:", err)
	}
	defer application.Close()

	codeRepo := repositories.NewVerificationCodeRepository(application.DB)
	cleanupService := services.NewCleanupService(codeRepo)

	// Run once at startup so a crashed scheduler never leaves more
	// than a day of backlog.
	if err := cleanupService.CleanupDaily(context.Background()); err != nil {
		utils.Logger.WithError(err).Error("Initial verification-codes cleanup failed")
	}

	c := cron.New()
	_, schErr := c.AddFunc("0 3 * * *", func() {
		if e := cleanupService.CleanupDaily(context.Background()); e != nil {
			utils.Logger.WithError(e).Error("Scheduled verification-codes cleanup failed")
		}
	})
	if schErr != nil {
		utils.Logger.WithError(schErr).Fatal("Failed to schedule verification-codes cleanup job")
	}

	c.Start()
	utils.Logger.Info("Housekeeping scheduler started")

	select {}
}
