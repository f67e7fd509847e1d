package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storeops/config"
	"storeops/internal/api/handler"
	"storeops/internal/api/middleware"
	"storeops/internal/auth"
	"storeops/pkg/jwt"
	"storeops/pkg/redis"
)

// uploadFormOverhead multipart 表单字段与边界的余量
const uploadFormOverhead = 64 << 10

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	handler.RegisterValidators()

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		v1.POST("/auth/login", middleware.RateLimit(rdb, cfg.RateLimit.LoginPerMinute, time.Minute), h.Auth.Login)

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb, logger))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)

			// 签到模块
			checkins := authorized.Group("/checkins")
			{
				checkins.POST("", middleware.RequireCapability(auth.CapCheckIn), h.Checkin.CheckIn)
				checkins.GET("/me", h.Checkin.Current)
				checkins.DELETE("/me", h.Checkin.CheckOut)
			}

			// 任务模块（细粒度权限在 Service 层按能力集合判断）
			tasks := authorized.Group("/tasks")
			{
				tasks.POST("", middleware.RequireCapability(auth.CapCreateTask), h.Task.Create)
				tasks.GET("/:id", h.Task.Get)
				tasks.POST("/:id/claim",
					middleware.RequireCapability(auth.CapClaimTask),
					middleware.RateLimit(rdb, cfg.RateLimit.ClaimPerMinute, time.Minute),
					h.Task.Claim)
				tasks.POST("/:id/start", h.Task.Start)
				tasks.POST("/:id/photos",
					middleware.RequireCapability(auth.CapUploadPhoto),
					middleware.BodyLimit(cfg.Upload.MaxBytes+uploadFormOverhead),
					h.Task.UploadPhoto)
				tasks.GET("/:id/photos", h.Task.ListPhotos)
				tasks.POST("/:id/complete", h.Task.Complete)
				tasks.POST("/:id/transfer", h.Transfer.Transfer)
				tasks.GET("/:id/transfers", h.Task.ListTransfers)
				tasks.POST("/:id/overdue", middleware.RequireCapability(auth.CapMarkOverdue), h.Task.MarkOverdue)
			}

			authorized.GET("/sites/:id/tasks", h.Task.ListBySite)

			// 任务事件推送
			authorized.GET("/ws", middleware.RequireCapability(auth.CapSubscribeNotifications), h.WS.Subscribe)
		}
	}

	return r
}
