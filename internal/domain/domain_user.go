package domain

import "time"

// User 配置文件中声明的可登录用户
type User struct {
	Username     string
	PasswordHash string
}

// SessionState 会话状态
type SessionState string

const (
	Unauthenticated SessionState = "unauthenticated"
	Authenticated   SessionState = "authenticated"
)

// Session 显式的登录会话，取代隐式的登录包装
type Session struct {
	State     SessionState
	ID        string
	Username  string
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IsAuthenticated 判断会话是否已登录
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.State == Authenticated
}

// AnonymousSession 未登录会话
func AnonymousSession() *Session {
	return &Session{State: Unauthenticated}
}
