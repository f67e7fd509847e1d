package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storeops/internal/api/handler"
	"storeops/internal/api/router"
	"storeops/internal/realtime"
	"storeops/internal/repository"
	"storeops/internal/scheduler"
	"storeops/internal/service"
	"storeops/internal/upload"
	"storeops/pkg/jwt"
	"storeops/pkg/redis"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动 HTTP 服务（自动执行数据库迁移）",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(_ *cobra.Command, _ []string) error {
	// 1. 配置与日志
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.Bool("geofence_enforce", cfg.Geofence.Enforce),
		zap.Bool("checkin_required", cfg.Checkin.Required),
	)

	// 2. 数据库 + 迁移
	db, err := openDB(cfg, logger, true)
	if err != nil {
		return err
	}
	defer closeDB(db)

	// 3. Redis：签到会话唯一存储，不可用时拒绝启动
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		return fmt.Errorf("Redis 连接失败: %w", err)
	}
	defer rdb.Close()

	// 4. 依赖注入: Repository → Service → Handler
	jwtMgr := jwt.NewManager(&cfg.Auth)
	hub := realtime.NewHub(logger)
	notifier := service.MultiNotifier{service.NewLogNotifier(logger), hub}

	repo := repository.NewRepository(db, rdb)
	svc := service.NewService(cfg, repo, jwtMgr, rdb, notifier, logger)
	validator := upload.NewValidator(cfg.Upload.MaxBytes, cfg.Upload.MinDimension)
	h := handler.NewHandler(svc, hub, validator, cfg.Server.CORS.AllowOrigins, logger)

	// 5. 逾期扫描
	var sched *scheduler.OverdueScheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.NewOverdueScheduler(svc.Task, cfg.Scheduler.OverdueSpec, logger)
		if err := sched.Start(); err != nil {
			return err
		}
	}

	// 6. HTTP 服务器（优雅关闭）
	engine := router.Setup(cfg, h, jwtMgr, rdb, logger)
	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:     engine,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.Error("HTTP 服务器异常", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if sched != nil {
		sched.Stop(ctx)
	}
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	logger.Info("服务器已关闭")
	return nil
}
