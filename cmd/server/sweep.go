package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storeops/internal/repository"
	"storeops/internal/scheduler"
	"storeops/internal/service"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep-overdue",
	Short: "立即执行一次逾期扫描（供外部调度器使用）",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := bootstrap()
		if err != nil {
			return err
		}
		defer logger.Sync()

		db, err := openDB(cfg, logger, false)
		if err != nil {
			return err
		}
		defer closeDB(db)

		// 逾期扫描不涉及签到会话，无需 Redis
		repo := repository.NewRepository(db, nil)
		taskSvc := service.NewTaskService(cfg, repo, service.NewLogNotifier(logger), logger)

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		n, err := scheduler.NewOverdueScheduler(taskSvc, cfg.Scheduler.OverdueSpec, logger).RunOnce(ctx)
		if err != nil {
			return err
		}
		logger.Info("逾期扫描完成", zap.Int64("count", n))
		fmt.Fprintf(cmd.OutOrStdout(), "marked %d task(s) overdue\n", n)
		return nil
	},
}
