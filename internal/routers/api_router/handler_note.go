package api_router

import (
	"errors"
	"io"
	"net/http"

	"github.com/haierkeys/pin-notes-service/internal/app"
	"github.com/haierkeys/pin-notes-service/internal/domain"
	"github.com/haierkeys/pin-notes-service/internal/dto"
	pkgapp "github.com/haierkeys/pin-notes-service/pkg/app"
	"github.com/haierkeys/pin-notes-service/pkg/code"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UploadFieldName 创建笔记时图片所在的 multipart 字段
const UploadFieldName = "image"

// NoteHandler 笔记 API 路由处理器
// 使用 App Container 注入依赖，支持统一错误处理
type NoteHandler struct {
	*Handler
}

// NewNoteHandler 创建 NoteHandler 实例
func NewNoteHandler(a *app.App) *NoteHandler {
	return &NoteHandler{Handler: NewHandler(a)}
}

// List 获取笔记列表
// @Summary 获取笔记列表
// @Description 获取全部笔记并解析图片访问链接，不分页
// @Tags 笔记
// @Security UserAuthToken
// @Produce json
// @Success 200 {object} pkgapp.Res{data=pkgapp.ListRes{list=[]dto.NoteDTO}} "成功"
// @Router /api/notes [get]
func (h *NoteHandler) List(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	notes, err := h.App.NoteService.List(c.Request.Context())
	if err != nil {
		h.errorResponse(c, "NoteHandler.List", err)
		return
	}

	list, err := NotesToDTO(notes)
	if err != nil {
		h.errorResponse(c, "NoteHandler.List.NotesToDTO", err)
		return
	}
	response.ToResponseList(code.Success, list, len(list))
}

// Create 创建笔记
// @Summary 创建笔记
// @Description 上传图片（可选）并创建笔记，返回刷新后的完整列表
// @Tags 笔记
// @Security UserAuthToken
// @Accept multipart/form-data,json
// @Produce json
// @Param params formData dto.NoteCreateRequest true "创建参数"
// @Param image formData file false "图片"
// @Success 200 {object} pkgapp.Res{data=pkgapp.ListRes{list=[]dto.NoteDTO}} "成功"
// @Router /api/notes [post]
func (h *NoteHandler) Create(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteCreateRequest{}

	// 参数绑定和验证
	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Warn("NoteHandler.Create.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	upload, err := ReadUpload(c, h.App.Config().App.UploadMaxSize)
	if err != nil {
		h.errorResponse(c, "NoteHandler.Create.ReadUpload", err)
		return
	}

	notes, err := h.App.NoteService.Create(c.Request.Context(), params, upload)
	if err != nil {
		h.errorResponse(c, "NoteHandler.Create", err)
		return
	}

	list, err := NotesToDTO(notes)
	if err != nil {
		h.errorResponse(c, "NoteHandler.Create.NotesToDTO", err)
		return
	}
	response.ToResponseList(code.SuccessCreate, list, len(list))
}

// Delete 删除笔记
// @Summary 删除笔记
// @Description 先从当前集合中移除，再删除图片和记录；name 为空时从当前集合中查找
// @Tags 笔记
// @Security UserAuthToken
// @Produce json
// @Param id path string true "笔记 ID"
// @Param name query string false "图片键"
// @Success 200 {object} pkgapp.Res{data=dto.NoteDeleteDTO} "成功"
// @Router /api/notes/{id} [delete]
func (h *NoteHandler) Delete(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteDeleteRequest{ID: c.Param("id")}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Warn("NoteHandler.Delete.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	outcome, err := h.App.NoteService.Delete(c.Request.Context(), params)
	if err != nil {
		h.errorResponse(c, "NoteHandler.Delete", err)
		return
	}

	response.ToResponse(code.SuccessDelete.WithData(dto.NoteDeleteDTO{
		ID:      outcome.ID,
		State:   string(outcome.State),
		Removed: outcome.Removed,
	}))
}

// ReadUpload 读取 multipart 中的图片，未上传时返回 nil
// maxSize 大于 0 时超出大小返回 ErrUploadTooLarge
func ReadUpload(c *gin.Context, maxSize int64) (*domain.Upload, error) {
	header, err := c.FormFile(UploadFieldName)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}
	if header.Size == 0 {
		return nil, nil
	}
	if maxSize > 0 && header.Size > maxSize {
		return nil, domain.ErrUploadTooLarge
	}

	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	return &domain.Upload{
		Content:     content,
		ContentType: header.Header.Get("Content-Type"),
	}, nil
}
