package app

import (
	"context"
	"fmt"
	"time"

	"github.com/echomeet/core/internal/config"
	"github.com/echomeet/core/internal/modules/export"
	pkgcron "github.com/echomeet/core/internal/pkg/cron"
	"go.uber.org/zap"
)

// registerCronJobs registers all scheduled background jobs.
func registerCronJobs(sched *pkgcron.Scheduler, deps appDeps, runtimeCfg *config.AppConfig, logger *zap.Logger) {
	cronLogger := logger.Named("CronService")

	sched.Register(pkgcron.Job{
		Name:        "auto_archive_stale",
		Description: "Archive meetings older than the configured age",
		Interval:    time.Hour,
		Fn: func(ctx context.Context) error {
			cfg, err := deps.settings.Get()
			if err != nil {
				return err
			}
			if cfg.AutoArchiveDays == nil || *cfg.AutoArchiveDays <= 0 {
				return nil
			}
			stale, err := deps.meetings.FindStaleForAutoArchive(*cfg.AutoArchiveDays)
			if err != nil {
				cronLogger.Warn("auto-archive scan failed", zap.Error(err))
				return err
			}
			archived := 0
			for _, m := range stale {
				if _, err := deps.meetings.Archive(m.ID); err != nil {
					cronLogger.Warn("auto-archive failed", zap.String("id", m.ID), zap.Error(err))
					continue
				}
				archived++
			}
			if archived > 0 {
				cronLogger.Info(fmt.Sprintf("auto-archived %d meetings", archived))
			}
			return nil
		},
	})

	sched.Register(pkgcron.Job{
		Name:        "auto_delete_archived",
		Description: "Delete archived meetings past the retention window",
		Interval:    24 * time.Hour,
		Fn: func(ctx context.Context) error {
			cfg, err := deps.settings.Get()
			if err != nil {
				return err
			}
			if cfg.AutoDeleteArchivedDays == nil || *cfg.AutoDeleteArchivedDays <= 0 {
				return nil
			}
			stale, err := deps.meetings.FindStaleForAutoDelete(*cfg.AutoDeleteArchivedDays)
			if err != nil {
				cronLogger.Warn("retention scan failed", zap.Error(err))
				return err
			}
			deleted := 0
			for _, m := range stale {
				if err := deps.meetings.Delete(m.ID); err != nil {
					cronLogger.Warn("retention delete failed", zap.String("id", m.ID), zap.Error(err))
					continue
				}
				deleted++
			}
			if deleted > 0 {
				cronLogger.Info(fmt.Sprintf("deleted %d archived meetings past retention", deleted))
			}
			return nil
		},
	})

	sched.Register(pkgcron.Job{
		Name:        "local_export_backup",
		Description: "Export all meetings to a local archive",
		Interval:    24 * time.Hour,
		Fn: func(ctx context.Context) error {
			cfg, err := deps.settings.Get()
			if err != nil {
				return err
			}
			if !cfg.BackupOptions.Enable {
				return nil
			}
			cronLogger.Info("exporting meetings to local archive...")
			filename, err := deps.engine.CreateLocalExport(runtimeCfg.BackupsDir())
			if err != nil {
				if err == export.ErrNothingToExport {
					return nil
				}
				cronLogger.Warn("local export failed", zap.Error(err))
				return err
			}
			cronLogger.Info("local export written", zap.String("filename", filename))
			return nil
		},
	})

	sched.Register(pkgcron.Job{
		Name:        "archive_retention",
		Description: "Prune old export archives beyond the keep count",
		Interval:    24 * time.Hour,
		Fn: func(ctx context.Context) error {
			cfg, err := deps.settings.Get()
			if err != nil {
				return err
			}
			if cfg.BackupOptions.KeepCount <= 0 {
				return nil
			}
			removed := export.PruneArchives(runtimeCfg.BackupsDir(), cfg.BackupOptions.KeepCount)
			if removed > 0 {
				cronLogger.Info(fmt.Sprintf("pruned %d old export archives", removed))
			}
			return nil
		},
	})
}
