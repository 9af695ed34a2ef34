package api_router

import (
	"github.com/haierkeys/pin-notes-service/internal/app"
	"github.com/haierkeys/pin-notes-service/internal/domain"
	"github.com/haierkeys/pin-notes-service/internal/dto"
	"github.com/haierkeys/pin-notes-service/internal/middleware"
	pkgapp "github.com/haierkeys/pin-notes-service/pkg/app"
	"github.com/haierkeys/pin-notes-service/pkg/code"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionHandler 会话 API 路由处理器
type SessionHandler struct {
	*Handler
}

// NewSessionHandler 创建 SessionHandler 实例
func NewSessionHandler(a *app.App) *SessionHandler {
	return &SessionHandler{Handler: NewHandler(a)}
}

// SignIn 登录
// @Summary 登录
// @Description 校验配置中的用户名和密码，签发会话令牌
// @Tags 会话
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param params body dto.SessionCreateRequest true "登录参数"
// @Success 200 {object} pkgapp.Res{data=dto.SessionDTO} "成功"
// @Router /api/session [post]
func (h *SessionHandler) SignIn(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.SessionCreateRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Warn("SessionHandler.SignIn.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	session, err := h.App.SessionService.SignIn(c.Request.Context(), params, pkgapp.GetRequestIP(c))
	if err != nil {
		h.errorResponse(c, "SessionHandler.SignIn", err)
		return
	}

	response.ToResponse(code.SuccessSignIn.WithData(SessionToDTO(session)))
}

// SignOut 退出登录
// @Summary 退出登录
// @Description 吊销当前会话令牌
// @Tags 会话
// @Security UserAuthToken
// @Produce json
// @Success 200 {object} pkgapp.Res{data=dto.SessionDTO} "成功"
// @Router /api/session [delete]
func (h *SessionHandler) SignOut(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	session, err := h.App.SessionService.SignOut(c.Request.Context(), middleware.TokenFromRequest(c))
	if err != nil {
		h.errorResponse(c, "SessionHandler.SignOut", err)
		return
	}

	response.ToResponse(code.SuccessSignOut.WithData(SessionToDTO(session)))
}

// Current 当前会话
// @Summary 当前会话
// @Tags 会话
// @Security UserAuthToken
// @Produce json
// @Success 200 {object} pkgapp.Res{data=dto.SessionDTO} "成功"
// @Router /api/session [get]
func (h *SessionHandler) Current(c *gin.Context) {
	session := *middleware.GetSession(c)
	// 不回传令牌本身
	session.Token = ""
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(SessionToDTO(&session)))
}

// SessionToDTO 会话响应对象，未登录时只包含状态
func SessionToDTO(s *domain.Session) dto.SessionDTO {
	out := dto.SessionDTO{State: string(s.State)}
	if s.IsAuthenticated() {
		out.Username = s.Username
		out.Token = s.Token
		expiresAt := s.ExpiresAt
		out.ExpiresAt = &expiresAt
	}
	return out
}
