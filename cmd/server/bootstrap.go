package main

import (
	"context"

	"github.com/grantlyhq/grantly/backend/internal/auth"
	"github.com/grantlyhq/grantly/backend/internal/config"
	"github.com/grantlyhq/grantly/backend/internal/handlers"
	"github.com/grantlyhq/grantly/backend/internal/models"
	"github.com/grantlyhq/grantly/backend/internal/services"
	"github.com/grantlyhq/grantly/backend/internal/services/idp"
	"github.com/grantlyhq/grantly/backend/pkg/logger"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	cfg       *config.Config
	verifier  auth.TokenVerifier
	taskQueue services.TaskQueue
	worker    *services.Worker
	scheduler *services.MaintenanceScheduler

	healthHandler    *handlers.HealthHandler
	grantHandler     *handlers.GrantHandler
	favoriteHandler  *handlers.FavoriteHandler
	userHandler      *handlers.UserHandler
	adminHandler     *handlers.AdminHandler
	systemLogHandler *handlers.SystemLogHandler
}

// bootstrap initializes all application dependencies: database, identity
// provider client, mail dispatch, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	ctx := context.Background()

	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	db := models.GetDB()
	services.InitSystemLogger(db)

	verifier, err := auth.NewVerifier(ctx, &cfg.Auth)
	if err != nil {
		logger.Fatalf("Failed to initialize token verifier: %v", err)
	}

	idpClient := idp.NewClient(ctx, &cfg.IdP)

	emailService := services.NewEmailService(&cfg.SMTP)
	if emailService.Enabled() {
		if err := emailService.Verify(); err != nil {
			logger.Warn().Err(err).Msg("SMTP verification failed, notifications may not deliver")
		}
	}

	grantService := services.NewGrantService(db)
	processor := notificationProcessor(emailService)

	taskQueue := services.NewTaskQueue(cfg, processor)

	var worker *services.Worker
	if cfg.Redis.Enabled && taskQueue.IsAsync() {
		worker = services.NewWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(processor)
			worker.Start()
		}
	}

	scheduler := services.NewMaintenanceScheduler(grantService, services.NewSystemLogService(db), cfg)
	scheduler.Start()

	return &appServices{
		cfg:       cfg,
		verifier:  verifier,
		taskQueue: taskQueue,
		worker:    worker,
		scheduler: scheduler,

		healthHandler:    handlers.NewHealthHandler(db, taskQueue),
		grantHandler:     handlers.NewGrantHandler(db, taskQueue),
		favoriteHandler:  handlers.NewFavoriteHandler(db),
		userHandler:      handlers.NewUserHandler(db, idpClient),
		adminHandler:     handlers.NewAdminHandler(idpClient, &cfg.Auth),
		systemLogHandler: handlers.NewSystemLogHandler(db),
	}
}

// notificationProcessor adapts the email service to the task queue.
func notificationProcessor(emailService *services.EmailService) func(context.Context, *services.NotificationTask) error {
	return func(_ context.Context, task *services.NotificationTask) error {
		return emailService.SendRequestNotification(&services.RequestNotification{
			GrantID:    task.GrantID,
			GrantName:  task.GrantName,
			Subject:    task.Subject,
			Suggestion: task.Suggestion,
		})
	}
}

// shutdown gracefully stops all background services.
func (s *appServices) shutdown() {
	s.scheduler.Stop()
	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		s.taskQueue.Close()
	}
	logger.Infof("All background services stopped")
}
