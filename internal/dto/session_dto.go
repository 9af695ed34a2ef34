package dto

import "time"

// SessionCreateRequest Sign in parameters
// SessionCreateRequest 登录参数
type SessionCreateRequest struct {
	Username string `json:"username" form:"username" binding:"required"` // User name // 用户名
	Password string `json:"password" form:"password" binding:"required"` // Password // 密码
}

// SessionDTO Session information for API response
// SessionDTO 会话信息
type SessionDTO struct {
	State     string     `json:"state"`
	Username  string     `json:"username,omitempty"`
	Token     string     `json:"token,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}
