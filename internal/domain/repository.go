// Package domain 定义领域模型和接口
package domain

import (
	"context"
	"io"
)

// NoteRepository 笔记记录存储接口
// 失败时 List 返回的错误包含 ErrRemoteQuery，Create/Delete 包含 ErrRemoteMutation
type NoteRepository interface {
	// List 获取全部笔记，不分页、不过滤
	List(ctx context.Context) ([]*Note, error)

	// Create 创建笔记
	Create(ctx context.Context, input *NoteInput) (*Note, error)

	// Delete 根据 ID 删除笔记，记录不存在时同时包含 ErrNoteNotFound
	Delete(ctx context.Context, id string) error
}

// BlobStore 笔记图片存储接口，以笔记名称为键
type BlobStore interface {
	// Put 写入图片，同名覆盖；失败时包含 ErrBlobWrite
	Put(ctx context.Context, key string, content []byte, contentType string) error

	// Get 返回图片的限时访问链接；不存在时包含 ErrBlobNotFound，其他失败包含 ErrBlobRead
	Get(ctx context.Context, key string) (string, error)

	// Remove 删除图片；失败时包含 ErrBlobWrite
	Remove(ctx context.Context, key string) error

	// Open 读取图片内容，供服务代理访问的后端使用
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}
