package middleware

import (
	"net/http"
	"strings"

	"github.com/haierkeys/pin-notes-service/internal/domain"
	"github.com/haierkeys/pin-notes-service/internal/service"
	"github.com/haierkeys/pin-notes-service/pkg/app"
	"github.com/haierkeys/pin-notes-service/pkg/code"

	"github.com/gin-gonic/gin"
)

const (
	// SessionCookieName 网页看板保存会话令牌的 Cookie
	SessionCookieName = "pin_notes_session"
	// ContextSessionKey gin.Context 中存储当前会话的键
	ContextSessionKey = "session"
)

// TokenFromRequest 依次从 Authorization 头、token 头、token 查询参数和 Cookie 中读取会话令牌
func TokenFromRequest(c *gin.Context) string {
	if s := c.GetHeader("Authorization"); s != "" {
		if len(s) > 7 && strings.EqualFold(s[:7], "Bearer ") {
			return strings.TrimSpace(s[7:])
		}
		return s
	}
	if s := c.GetHeader("Token"); s != "" {
		return s
	}
	if s, exist := c.GetQuery("token"); exist && s != "" {
		return s
	}
	if s, err := c.Cookie(SessionCookieName); err == nil {
		return s
	}
	return ""
}

// SessionAuth API 会话认证中间件，未登录时返回 JSON 错误
func SessionAuth(sessions service.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := app.NewResponse(c)

		token := TokenFromRequest(c)
		if token == "" {
			response.ToResponse(code.ErrorNotUserAuthToken)
			c.Abort()
			return
		}

		session, err := sessions.Resolve(c.Request.Context(), token)
		if err != nil {
			response.ToResponse(code.ErrorInvalidUserAuthToken)
			c.Abort()
			return
		}
		c.Set(ContextSessionKey, session)

		c.Next()
	}
}

// SessionAuthRedirect 网页会话认证中间件，未登录时清除 Cookie 并跳转到登录页
func SessionAuthRedirect(sessions service.SessionService, location string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c)
		session, err := sessions.Resolve(c.Request.Context(), token)
		if token == "" || err != nil {
			if token != "" {
				c.SetCookie(SessionCookieName, "", -1, "/", "", false, true)
			}
			c.Redirect(http.StatusSeeOther, location)
			c.Abort()
			return
		}
		c.Set(ContextSessionKey, session)

		c.Next()
	}
}

// GetSession 获取当前请求的会话，未经过认证中间件时返回未登录会话
func GetSession(c *gin.Context) *domain.Session {
	if v, exist := c.Get(ContextSessionKey); exist {
		if session, ok := v.(*domain.Session); ok {
			return session
		}
	}
	return domain.AnonymousSession()
}
