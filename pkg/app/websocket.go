package app

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lxzan/gws"
	"go.uber.org/zap"
)

const (
	WebSocketServerPingInterval = 25 * time.Second
	WebSocketServerPingWait     = 40 * time.Second
)

type WebsocketServerConfig struct {
	GWSOption    gws.ServerOption
	PingInterval time.Duration
	PingWait     time.Duration
	Logger       *zap.Logger
}

// WebsocketClient 存储每个 WebSocket 连接及其相关状态
type WebsocketClient struct {
	conn     *gws.Conn
	done     chan struct{}
	closed   sync.Once
	Username string
	IP       string
}

// Send 向单个客户端发送文本消息
func (c *WebsocketClient) Send(payload []byte) error {
	return c.conn.WriteMessage(gws.OpcodeText, payload)
}

// 定期发送 Ping 消息
func (c *WebsocketClient) pingLoop(interval time.Duration, lg *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			if err := c.conn.WritePing(nil); err != nil {
				lg.Warn("WebsocketServer Client Ping err", zap.String("user", c.Username), zap.Error(err))
				return
			}
		}
	}
}

func (c *WebsocketClient) stop() {
	c.closed.Do(func() { close(c.done) })
}

// ------------------------------------> WebsocketServer

type ConnStorage = map[*gws.Conn]*WebsocketClient

// WebsocketServer 只向客户端推送消息，客户端发送 "close" 主动断开
type WebsocketServer struct {
	clients   ConnStorage
	mu        sync.RWMutex
	up        *gws.Upgrader
	config    *WebsocketServerConfig
	logger    *zap.Logger
	onConnect func(*WebsocketClient)
}

func NewWebsocketServer(c WebsocketServerConfig) *WebsocketServer {
	if c.PingInterval == 0 {
		c.PingInterval = WebSocketServerPingInterval
	}
	if c.PingWait == 0 {
		c.PingWait = WebSocketServerPingWait
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	w := &WebsocketServer{
		clients: make(ConnStorage),
		config:  &c,
		logger:  c.Logger,
	}
	w.up = gws.NewUpgrader(w, &w.config.GWSOption)
	return w
}

// OnConnect 注册新连接建立后的回调，用于推送初始数据
func (w *WebsocketServer) OnConnect(fn func(*WebsocketClient)) {
	w.onConnect = fn
}

// Serve 升级当前请求为 WebSocket 连接，username 由调用方完成认证后传入
func (w *WebsocketServer) Serve(c *gin.Context, username string) {
	socket, err := w.up.Upgrade(c.Writer, c.Request)
	if err != nil {
		w.logger.Error("WebsocketServer upgrade err", zap.Error(err))
		return
	}
	client := &WebsocketClient{
		conn:     socket,
		done:     make(chan struct{}),
		Username: username,
		IP:       GetRequestIP(c),
	}
	w.addClient(client)
	w.logger.Info("WebsocketServer User Enters", zap.String("user", username), zap.Int("count", w.Count()))

	if w.onConnect != nil {
		w.onConnect(client)
	}
	go client.pingLoop(w.config.PingInterval, w.logger)
	go socket.ReadLoop()
}

// Broadcast 向全部客户端广播文本消息
func (w *WebsocketServer) Broadcast(payload []byte) {
	b := gws.NewBroadcaster(gws.OpcodeText, payload)
	defer b.Close()

	w.mu.RLock()
	defer w.mu.RUnlock()
	for conn := range w.clients {
		_ = b.Broadcast(conn)
	}
}

// Count 当前连接数
func (w *WebsocketServer) Count() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.clients)
}

// CloseAll 断开全部连接，服务关闭时调用
func (w *WebsocketServer) CloseAll() {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for conn := range w.clients {
		conn.WriteClose(1001, []byte("ServerClose"))
	}
}

func (w *WebsocketServer) getClient(conn *gws.Conn) *WebsocketClient {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.clients[conn]
}

func (w *WebsocketServer) addClient(c *WebsocketClient) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.clients[c.conn] = c
}

func (w *WebsocketServer) removeClient(conn *gws.Conn) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.clients, conn)
}

func (w *WebsocketServer) OnOpen(conn *gws.Conn) {
	_ = conn.SetDeadline(time.Now().Add(w.config.PingWait))
}

func (w *WebsocketServer) OnClose(conn *gws.Conn, err error) {
	if c := w.getClient(conn); c != nil {
		c.stop()
		w.removeClient(conn)
		w.logger.Info("WebsocketServer User Leave", zap.String("user", c.Username), zap.Int("count", w.Count()))
	}
}

func (w *WebsocketServer) OnPing(socket *gws.Conn, payload []byte) {
	_ = socket.SetDeadline(time.Now().Add(w.config.PingWait))
	_ = socket.WritePong(nil)
}

func (w *WebsocketServer) OnPong(socket *gws.Conn, payload []byte) {
	_ = socket.SetDeadline(time.Now().Add(w.config.PingWait))
}

func (w *WebsocketServer) OnMessage(conn *gws.Conn, message *gws.Message) {
	defer message.Close()
	_ = conn.SetDeadline(time.Now().Add(w.config.PingWait))
	if message.Opcode == gws.OpcodeText && message.Data.String() == "close" {
		conn.WriteClose(1000, []byte("ClientClose"))
	}
}
