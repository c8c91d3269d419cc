package services

import (
	"github.com/grantlyhq/grantly/backend/internal/config"
	"github.com/grantlyhq/grantly/backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// MaintenanceScheduler runs the nightly housekeeping jobs: reconciling the
// has_requests flag on grants and pruning old system logs.
type MaintenanceScheduler struct {
	grantService     *GrantService
	systemLogService *SystemLogService
	retentionDays    int
	cronScheduler    *cron.Cron
}

func NewMaintenanceScheduler(grantService *GrantService, systemLogService *SystemLogService, cfg *config.Config) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		grantService:     grantService,
		systemLogService: systemLogService,
		retentionDays:    cfg.Server.LogRetentionDays,
	}
}

func (s *MaintenanceScheduler) Start() {
	s.cronScheduler = cron.New()

	if _, err := s.cronScheduler.AddFunc("30 3 * * *", s.runReconcile); err != nil {
		logger.Errorf("[Maintenance] Failed to add reconcile job: %v", err)
	}
	if _, err := s.cronScheduler.AddFunc("0 4 * * *", s.runLogCleanup); err != nil {
		logger.Errorf("[Maintenance] Failed to add log cleanup job: %v", err)
	}

	s.cronScheduler.Start()
	logger.Infof("[Maintenance] Scheduler started")
}

func (s *MaintenanceScheduler) Stop() {
	if s.cronScheduler != nil {
		s.cronScheduler.Stop()
	}
}

func (s *MaintenanceScheduler) runReconcile() {
	fixed, err := s.grantService.ReconcileHasRequests()
	if err != nil {
		logger.Errorf("[Maintenance] has_requests reconcile failed: %v", err)
		return
	}
	if fixed > 0 {
		logger.Infof("[Maintenance] Reconciled has_requests on %d grants", fixed)
	}
}

func (s *MaintenanceScheduler) runLogCleanup() {
	if s.retentionDays <= 0 {
		return
	}
	deleted, err := s.systemLogService.CleanupOldLogs(s.retentionDays)
	if err != nil {
		logger.Errorf("[Maintenance] Log cleanup failed: %v", err)
		return
	}
	if deleted > 0 {
		logger.Infof("[Maintenance] Deleted %d system logs older than %d days", deleted, s.retentionDays)
	}
}
