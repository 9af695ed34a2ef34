// Package domain 定义领域模型和接口
package domain

import "time"

// Note 笔记领域模型
type Note struct {
	// ID 由记录存储在创建时分配，创建前为空
	ID string
	// Name 标题，同时也是图片在对象存储中的键，不保证唯一
	Name        string
	Description string
	// ImageKey 记录中保存的 image 字段，非空表示上传过图片
	ImageKey string
	// ImageURL 列表时解析得到的限时访问链接，只在 List 中填充
	ImageURL  string
	CreatedAt time.Time
}

// HasImage 判断笔记是否上传过图片
func (n *Note) HasImage() bool {
	return n.ImageKey != ""
}

// Clone 返回笔记的副本，发布给观察者时使用
func (n *Note) Clone() *Note {
	c := *n
	return &c
}

// NoteInput 创建笔记时写入记录存储的字段
type NoteInput struct {
	Name        string
	Description string
	ImageKey    string
}

// Upload 创建笔记时附带的图片
type Upload struct {
	Content     []byte
	ContentType string
}

// DeleteState 删除操作所处的状态
type DeleteState string

const (
	DeletePending    DeleteState = "pending"
	DeleteCommitted  DeleteState = "committed"
	DeleteRolledBack DeleteState = "rolled_back"
)

// DeleteOutcome 删除操作的结果
type DeleteOutcome struct {
	ID    string
	State DeleteState
	// Removed 本地集合中是否找到并移除了该笔记
	Removed bool
	// Index 笔记移除前在集合中的位置，未找到时为 -1
	Index int
}
