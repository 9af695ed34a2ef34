// Package web_router 服务端渲染的笔记看板
package web_router

import (
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/haierkeys/pin-notes-service/internal/app"
	"github.com/haierkeys/pin-notes-service/internal/domain"
	"github.com/haierkeys/pin-notes-service/internal/dto"
	"github.com/haierkeys/pin-notes-service/internal/middleware"
	"github.com/haierkeys/pin-notes-service/internal/routers/api_router"
	pkgapp "github.com/haierkeys/pin-notes-service/pkg/app"
	"github.com/haierkeys/pin-notes-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TemplatePattern 模板在嵌入文件系统中的位置
const TemplatePattern = "web/templates/*.html"

// SignInPath 网页登录地址
const SignInPath = "/signin"

// ParseTemplates 解析看板模板
func ParseTemplates(fsys fs.FS) (*template.Template, error) {
	return template.ParseFS(fsys, TemplatePattern)
}

type page struct {
	Title    string
	AppName  string
	Version  string
	Username string
	Error    string
	Notes    []*domain.Note
	Form     dto.NoteCreateRequest
}

// BoardHandler 网页看板处理器
type BoardHandler struct {
	App  *app.App
	tmpl *template.Template
}

// NewBoardHandler 创建 BoardHandler 实例
func NewBoardHandler(a *app.App, tmpl *template.Template) *BoardHandler {
	return &BoardHandler{App: a, tmpl: tmpl}
}

// Board 渲染看板，每次打开页面都会重新拉取列表
func (h *BoardHandler) Board(c *gin.Context) {
	p := h.newPage(c, "Notes")
	notes, err := h.App.NoteService.List(c.Request.Context())
	if err != nil {
		h.logError(c, "BoardHandler.Board", err)
		// 列表失败时展示当前已发布的集合
		p.Error = errorMessage(err)
		notes = h.App.NoteService.Notes()
	}
	p.Notes = notes
	h.render(c, "board", p)
}

// Create 提交创建表单，成功后跳转回空白表单
func (h *BoardHandler) Create(c *gin.Context) {
	params := dto.NoteCreateRequest{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
	}

	upload, err := api_router.ReadUpload(c, h.App.Config().App.UploadMaxSize)
	if err == nil {
		_, err = h.App.NoteService.Create(c.Request.Context(), &params, upload)
	}
	if err != nil {
		h.logError(c, "BoardHandler.Create", err)
		p := h.newPage(c, "Notes")
		p.Error = errorMessage(err)
		p.Notes = h.App.NoteService.Notes()
		p.Form = params
		h.render(c, "board", p)
		return
	}

	c.Redirect(http.StatusSeeOther, "/")
}

// Delete 删除笔记后跳转回看板
func (h *BoardHandler) Delete(c *gin.Context) {
	params := dto.NoteDeleteRequest{
		ID:   c.Param("id"),
		Name: c.PostForm("name"),
	}

	if _, err := h.App.NoteService.Delete(c.Request.Context(), &params); err != nil {
		h.logError(c, "BoardHandler.Delete", err)
		p := h.newPage(c, "Notes")
		p.Error = errorMessage(err)
		p.Notes = h.App.NoteService.Notes()
		h.render(c, "board", p)
		return
	}

	c.Redirect(http.StatusSeeOther, "/")
}

// SignInPage 渲染登录页，已登录时跳转到看板
func (h *BoardHandler) SignInPage(c *gin.Context) {
	if token := middleware.TokenFromRequest(c); token != "" {
		if _, err := h.App.SessionService.Resolve(c.Request.Context(), token); err == nil {
			c.Redirect(http.StatusSeeOther, "/")
			return
		}
	}
	h.render(c, "signin", h.newPage(c, "Sign in"))
}

// SignIn 提交登录表单，成功后写入会话 Cookie
func (h *BoardHandler) SignIn(c *gin.Context) {
	params := &dto.SessionCreateRequest{
		Username: c.PostForm("username"),
		Password: c.PostForm("password"),
	}

	session, err := h.App.SessionService.SignIn(c.Request.Context(), params, pkgapp.GetRequestIP(c))
	if err != nil {
		h.logError(c, "BoardHandler.SignIn", err)
		p := h.newPage(c, "Sign in")
		p.Error = errorMessage(err)
		p.Username = params.Username
		h.render(c, "signin", p)
		return
	}

	maxAge := int(time.Until(session.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, session.Token, maxAge, "/", "", c.Request.TLS != nil, true)
	c.Redirect(http.StatusSeeOther, "/")
}

// SignOut 吊销会话并清除 Cookie
func (h *BoardHandler) SignOut(c *gin.Context) {
	if _, err := h.App.SessionService.SignOut(c.Request.Context(), middleware.TokenFromRequest(c)); err != nil {
		h.logError(c, "BoardHandler.SignOut", err)
	}
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", c.Request.TLS != nil, true)
	c.Redirect(http.StatusSeeOther, SignInPath)
}

func (h *BoardHandler) newPage(c *gin.Context, title string) *page {
	version := h.App.Version()
	return &page{
		Title:    title,
		AppName:  app.Name,
		Version:  version.Version,
		Username: middleware.GetSession(c).Username,
	}
}

func (h *BoardHandler) render(c *gin.Context, name string, p *page) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := h.tmpl.ExecuteTemplate(c.Writer, name, p); err != nil {
		h.logError(c, "BoardHandler.render", err)
	}
}

func (h *BoardHandler) logError(c *gin.Context, method string, err error) {
	h.App.Logger().Error(method,
		zap.Error(err),
		zap.String(logger.FieldTraceID, middleware.GetTraceIDFromGin(c)),
	)
}

// errorMessage 使用接口返回码的本地化消息展示错误
func errorMessage(err error) string {
	return api_router.ErrorCode(err).Msg()
}
