package realtime

import (
	"context"
	"time"

	ws "github.com/coder/websocket"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
)

// Client 单个 WebSocket 订阅连接
// allSites 为 true 时接收所有门店事件（跨店管理员）
type Client struct {
	hub      *Hub
	conn     *ws.Conn
	send     chan []byte
	workerID string
	siteID   string
	allSites bool
}

// NewClient 创建订阅连接
func NewClient(hub *Hub, conn *ws.Conn, workerID, siteID string, allSites bool) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		workerID: workerID,
		siteID:   siteID,
		allSites: allSites,
	}
}

func (c *Client) subscribed(siteID string) bool {
	return c.allSites || c.siteID == siteID
}

// Run 注册到 Hub 并阻塞直到连接关闭
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.writePump(ctx)
	c.readPump(ctx)
}

// readPump 丢弃客户端消息，读取出错即视为断开
func (c *Client) readPump(ctx context.Context) {
	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			return
		}
	}
}

func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.Write(ctx, ws.MessageText, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
