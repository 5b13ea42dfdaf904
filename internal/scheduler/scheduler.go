// Package scheduler runs the nightly export snapshot.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/adscenter/reports/internal/apperror"
	"github.com/adscenter/reports/internal/config"
	"github.com/adscenter/reports/internal/repository/sheets"
	"github.com/adscenter/reports/internal/service/export"
	"github.com/adscenter/reports/internal/service/reports"
)

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron      *cron.Cron
	exportSvc *export.Service
	reportSvc *reports.Service
	exporter  sheets.Exporter
	cfg       config.ExportConfig
	logger    *zap.Logger
}

// NewScheduler creates a scheduler. exporter may be nil when no Google Sheet
// is configured.
func NewScheduler(cfg config.ExportConfig, exportSvc *export.Service, reportSvc *reports.Service, exporter sheets.Exporter, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cron:      cron.New(),
		exportSvc: exportSvc,
		reportSvc: reportSvc,
		exporter:  exporter,
		cfg:       cfg,
		logger:    logger,
	}
}

// Start registers the nightly snapshot job and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.CronSchedule))

	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.runExportSnapshot); err != nil {
		s.logger.Error("failed to schedule export snapshot", zap.Error(err))
		return
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) runExportSnapshot() {
	s.logger.Info("running export snapshot")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	path, err := s.exportSvc.WriteSnapshot(ctx, s.cfg.Dir)
	if err != nil {
		s.logger.Error("failed to write export snapshot", zap.Error(err))
		return
	}
	s.logger.Info("export snapshot completed", zap.String("path", path))

	if s.exporter == nil {
		return
	}

	// Push today's report to the sheet; a day without a report is normal.
	today := time.Now().Format("2006-01-02")
	report, err := s.reportSvc.GetByDate(ctx, today)
	if err != nil {
		if !apperror.IsNotFound(err) {
			s.logger.Error("failed to load today's report for sheet export", zap.Error(err))
		}
		return
	}

	if err := s.exporter.AppendReport(ctx, report); err != nil {
		s.logger.Error("failed to append report to sheet", zap.Error(err))
		return
	}
	s.logger.Info("report appended to sheet", zap.String("date", today))
}
