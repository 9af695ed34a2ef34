// Package api_router 提供 HTTP API 路由处理器
package api_router

import (
	"context"
	"errors"

	"github.com/haierkeys/pin-notes-service/internal/app"
	"github.com/haierkeys/pin-notes-service/internal/domain"
	"github.com/haierkeys/pin-notes-service/internal/dto"
	"github.com/haierkeys/pin-notes-service/internal/middleware"
	"github.com/haierkeys/pin-notes-service/pkg/code"
	"github.com/haierkeys/pin-notes-service/pkg/convert"
	apperrors "github.com/haierkeys/pin-notes-service/pkg/errors"
	"github.com/haierkeys/pin-notes-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 基础 Handler 结构体，封装 App Container
// 所有 API Handler 都应该嵌入此结构体以获得依赖注入能力
type Handler struct {
	App *app.App
}

// NewHandler 创建基础 Handler 实例
func NewHandler(a *app.App) *Handler {
	return &Handler{App: a}
}

// logError 记录错误日志，包含 Trace ID
func (h *Handler) logError(ctx context.Context, method string, err error) {
	h.App.Logger().Error(method,
		zap.Error(err),
		zap.String(logger.FieldTraceID, middleware.GetTraceID(ctx)),
	)
}

// errorResponse 记录日志并按错误类型返回统一错误响应
func (h *Handler) errorResponse(c *gin.Context, method string, err error) {
	h.logError(c.Request.Context(), method, err)
	apperrors.ErrorResponse(c, apperrors.NewAppError(ErrorCode(err), err))
}

// ErrorCode 将领域错误映射为接口返回码
// ErrNoteNotFound 与 ErrRemoteMutation 同时出现时优先返回 ErrorNoteNotFound
func ErrorCode(err error) *code.Code {
	switch {
	case errors.Is(err, domain.ErrNoteNameRequired), errors.Is(err, domain.ErrNoteDescriptionRequired):
		return code.ErrorNoteNameRequired
	case errors.Is(err, domain.ErrNoteNameInvalid):
		return code.ErrorNoteNameInvalid
	case errors.Is(err, domain.ErrUploadTooLarge):
		return code.ErrorUploadTooLarge
	case errors.Is(err, domain.ErrInvalidCredentials):
		return code.ErrorUserLoginPasswordFailed
	case errors.Is(err, domain.ErrInvalidSession):
		return code.ErrorInvalidUserAuthToken
	case errors.Is(err, domain.ErrNoteNotFound):
		return code.ErrorNoteNotFound
	case errors.Is(err, domain.ErrRemoteQuery):
		return code.ErrorRemoteQuery
	case errors.Is(err, domain.ErrRemoteMutation):
		return code.ErrorRemoteMutation
	case errors.Is(err, domain.ErrBlobNotFound):
		return code.ErrorBlobNotFound
	case errors.Is(err, domain.ErrBlobRead):
		return code.ErrorBlobRead
	case errors.Is(err, domain.ErrBlobWrite):
		return code.ErrorBlobWrite
	case errors.Is(err, context.DeadlineExceeded):
		return code.ErrorRequestTimeout
	}
	return code.ErrorServerInternal
}

// NotesToDTO 将笔记集合转换为响应对象
func NotesToDTO(notes []*domain.Note) ([]*dto.NoteDTO, error) {
	out := make([]*dto.NoteDTO, 0, len(notes))
	if len(notes) == 0 {
		return out, nil
	}
	if err := convert.StructAssign(notes, &out); err != nil {
		return nil, err
	}
	return out, nil
}
