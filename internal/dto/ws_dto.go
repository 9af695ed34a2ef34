package dto

// WebSocketAction WebSocket text message type
// WebSocket 文本消息类型
type WebSocketAction = string

const (
	// NoteBoardSnapshot full collection pushed after every change
	// NoteBoardSnapshot 集合变化后推送的完整快照
	NoteBoardSnapshot WebSocketAction = "NoteBoardSnapshot"
)

// WebSocketMessage message envelope sent to watchers
// WebSocketMessage 推送给订阅者的消息
type WebSocketMessage struct {
	Action WebSocketAction `json:"action"`
	Data   interface{}     `json:"data"`
}
