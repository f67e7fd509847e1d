// Package realtime 向门店管理人员推送任务事件（WebSocket）。
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"storeops/internal/model"
)

// Hub 维护在线订阅者，按门店分发任务事件
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *zap.Logger
}

// NewHub 创建 Hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register 加入订阅者
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister 移除订阅者并关闭其发送通道；重复调用无副作用
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Notify 将事件推送给订阅了该门店的在线客户端
// 客户端缓冲区已满时丢弃该条消息，不阻塞业务请求
func (h *Hub) Notify(_ context.Context, event model.TaskEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("序列化任务事件失败: %w", err)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	dropped := 0
	for c := range h.clients {
		if !c.subscribed(event.SiteID) {
			continue
		}
		select {
		case c.send <- data:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		h.logger.Warn("推送缓冲区已满，丢弃任务事件",
			zap.String("type", string(event.Type)),
			zap.String("task_id", event.TaskID),
			zap.Int("dropped", dropped),
		)
	}
	return nil
}

// ClientCount 在线订阅者数量
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
