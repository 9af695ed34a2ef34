// Package dto Defines data transfer objects (request parameters and response structs)
// Package dto 定义数据传输对象（请求参数和响应结构体）
package dto

import "time"

// NoteCreateRequest Parameters for creating a note, the image arrives as the multipart "image" file
// NoteCreateRequest 创建笔记的参数，图片通过 multipart 的 image 字段上传
type NoteCreateRequest struct {
	Name        string `json:"name" form:"name" binding:"required,max=255,blobkey"` // Note title, also the image key // 标题，同时作为图片键
	Description string `json:"description" form:"description" binding:"required"`   // Description // 描述
}

// NoteDeleteRequest Parameters for deleting a note
// NoteDeleteRequest 删除笔记的参数
type NoteDeleteRequest struct {
	ID   string `uri:"id" json:"id" form:"id" binding:"required"` // Record id // 记录 ID
	Name string `json:"name" form:"name"`                         // Image key, looked up from the board when empty // 图片键，为空时从当前集合中查找
}

// NoteDTO Note data transfer object
// NoteDTO 笔记数据传输对象
type NoteDTO struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image,omitempty"` // Resolved display URL // 解析后的访问链接
	HasImage    bool      `json:"hasImage"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// NoteDeleteDTO Result of a delete request
// NoteDeleteDTO 删除操作结果
type NoteDeleteDTO struct {
	ID      string `json:"id"`
	State   string `json:"state"`
	Removed bool   `json:"removed"`
}
