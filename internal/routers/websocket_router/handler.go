// Package websocket_router 向看板订阅者推送笔记集合快照
package websocket_router

import (
	"github.com/haierkeys/pin-notes-service/internal/app"
	"github.com/haierkeys/pin-notes-service/internal/domain"
	"github.com/haierkeys/pin-notes-service/internal/dto"
	"github.com/haierkeys/pin-notes-service/internal/middleware"
	"github.com/haierkeys/pin-notes-service/internal/routers/api_router"
	pkgapp "github.com/haierkeys/pin-notes-service/pkg/app"
	"github.com/haierkeys/pin-notes-service/pkg/logger"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NoteWSHandler 订阅笔记服务的集合变化并广播给所有连接
type NoteWSHandler struct {
	App         *app.App
	wss         *pkgapp.WebsocketServer
	unsubscribe func()
}

// NewNoteWSHandler 创建 NoteWSHandler 并订阅集合变化
// App 关闭时自动取消订阅并断开全部连接
func NewNoteWSHandler(a *app.App, wss *pkgapp.WebsocketServer) *NoteWSHandler {
	h := &NoteWSHandler{App: a, wss: wss}

	wss.OnConnect(func(client *pkgapp.WebsocketClient) {
		payload, err := h.snapshot(a.NoteService.Notes())
		if err != nil {
			h.logError("NoteWSHandler.OnConnect", err)
			return
		}
		if err := client.Send(payload); err != nil {
			h.logError("NoteWSHandler.OnConnect.Send", err)
		}
	})

	h.unsubscribe = a.NoteService.Subscribe(func(notes []*domain.Note) {
		payload, err := h.snapshot(notes)
		if err != nil {
			h.logError("NoteWSHandler.Broadcast", err)
			return
		}
		wss.Broadcast(payload)
	})

	go func() {
		<-a.ShutdownCh()
		h.Close()
	}()

	return h
}

// Watch 升级为 WebSocket 连接，需先经过会话认证中间件
func (h *NoteWSHandler) Watch(c *gin.Context) {
	session := middleware.GetSession(c)
	h.wss.Serve(c, session.Username)
}

// Close 取消订阅并断开全部连接
func (h *NoteWSHandler) Close() {
	h.unsubscribe()
	h.wss.CloseAll()
}

func (h *NoteWSHandler) snapshot(notes []*domain.Note) ([]byte, error) {
	list, err := api_router.NotesToDTO(notes)
	if err != nil {
		return nil, err
	}
	return sonic.Marshal(dto.WebSocketMessage{
		Action: dto.NoteBoardSnapshot,
		Data:   list,
	})
}

func (h *NoteWSHandler) logError(method string, err error) {
	h.App.Logger().Error(method, zap.Error(err), zap.Int(logger.FieldCount, h.wss.Count()))
}
