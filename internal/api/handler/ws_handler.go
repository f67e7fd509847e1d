package handler

import (
	"net/url"

	ws "github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storeops/internal/auth"
	"storeops/internal/realtime"
)

// WSHandler 任务事件推送
type WSHandler struct {
	hub            *realtime.Hub
	originPatterns []string
	logger         *zap.Logger
}

// NewWSHandler 创建 WSHandler
// allowOrigins 与 CORS 白名单一致，取其 host 作为握手来源校验
func NewWSHandler(hub *realtime.Hub, allowOrigins []string, logger *zap.Logger) *WSHandler {
	patterns := make([]string, 0, len(allowOrigins))
	for _, o := range allowOrigins {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
			continue
		}
		patterns = append(patterns, o)
	}
	return &WSHandler{hub: hub, originPatterns: patterns, logger: logger}
}

// Subscribe 升级为 WebSocket，推送本店（跨店管理员为全部门店）任务事件
// GET /api/v1/ws
func (h *WSHandler) Subscribe(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	conn, err := ws.Accept(c.Writer, c.Request, &ws.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		h.logger.Warn("WebSocket 握手失败", zap.String("worker_id", caller.WorkerID), zap.Error(err))
		return
	}
	defer conn.CloseNow()

	client := realtime.NewClient(h.hub, conn, caller.WorkerID, caller.SiteID, caller.Caps.Has(auth.CapCrossSite))
	client.Run(c.Request.Context())
}
