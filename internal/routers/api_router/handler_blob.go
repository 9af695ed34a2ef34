package api_router

import (
	"io"
	"net/http"

	"github.com/haierkeys/pin-notes-service/internal/app"
	pkgapp "github.com/haierkeys/pin-notes-service/pkg/app"
	"github.com/haierkeys/pin-notes-service/pkg/code"
	"github.com/haierkeys/pin-notes-service/pkg/logger"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BlobHandler 代理访问本地文件系统和 WebDAV 中的图片
type BlobHandler struct {
	*Handler
}

// NewBlobHandler 创建 BlobHandler 实例
func NewBlobHandler(a *app.App) *BlobHandler {
	return &BlobHandler{Handler: NewHandler(a)}
}

// Serve 校验签名链接并输出图片内容
// @Summary 访问图片
// @Description 列表中返回的限时链接，token 过期后需要重新获取列表
// @Tags 笔记
// @Produce octet-stream
// @Param token query string true "签名"
// @Router /api/blob [get]
func (h *BlobHandler) Serve(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	if !h.App.BlobProxied() {
		response.ToResponse(code.ErrorBlobNotProxied)
		return
	}

	key, err := h.App.BlobLinks.Verify(c.Query("token"))
	if err != nil {
		response.ToResponse(code.ErrorInvalidBlobToken)
		return
	}

	reader, err := h.App.BlobStore.Open(c.Request.Context(), key)
	if err != nil {
		h.errorResponse(c, "BlobHandler.Serve.Open", err)
		return
	}
	defer reader.Close()

	content, err := io.ReadAll(reader)
	if err != nil {
		h.errorResponse(c, "BlobHandler.Serve.Read", err)
		return
	}

	h.App.Logger().Debug("BlobHandler.Serve", zap.String(logger.FieldFileKey, key), zap.Int(logger.FieldSize, len(content)))
	c.Header("Cache-Control", "private, max-age=300")
	c.Data(http.StatusOK, mimetype.Detect(content).String(), content)
}
