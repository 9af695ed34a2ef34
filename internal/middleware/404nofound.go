package middleware

import (
	"github.com/haierkeys/pin-notes-service/pkg/app"
	"github.com/haierkeys/pin-notes-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// NoFound 未匹配路由统一返回 ErrorNotFound，details 中带上请求方法和路径
func NoFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		app.NewResponse(c).ToResponse(code.ErrorNotFound.WithDetails(c.Request.Method + " " + c.Request.URL.Path))
		c.Abort()
	}
}
