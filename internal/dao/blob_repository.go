package dao

import (
	"context"
	"io"
	"io/fs"
	"time"

	"github.com/haierkeys/pin-notes-service/internal/domain"
	"github.com/haierkeys/pin-notes-service/pkg/storage"

	"github.com/pkg/errors"
)

// blobRepository adapts a storage backend to domain.BlobStore. Backends that
// cannot sign provider URLs get links to this service's blob route instead.
type blobRepository struct {
	store  storage.Storager
	links  *storage.LinkSigner
	expiry time.Duration
}

// NewBlobRepository 创建图片存储，links 仅在后端不支持签名链接时使用
func NewBlobRepository(store storage.Storager, links *storage.LinkSigner, expiry time.Duration) domain.BlobStore {
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	return &blobRepository{store: store, links: links, expiry: expiry}
}

func (r *blobRepository) Put(ctx context.Context, key string, content []byte, contentType string) error {
	if _, err := r.store.SendContent(ctx, key, content, contentType); err != nil {
		return domain.NewStoreError(domain.ErrBlobWrite, "put", key, err)
	}
	return nil
}

// Get 检查对象存在后返回限时访问链接
func (r *blobRepository) Get(ctx context.Context, key string) (string, error) {
	ok, err := r.store.Exists(ctx, key)
	if err != nil {
		return "", domain.NewStoreError(domain.ErrBlobRead, "get", key, err)
	}
	if !ok {
		return "", domain.NewStoreError(domain.ErrBlobNotFound, "get", key, nil)
	}

	if signer, ok := r.store.(storage.URLSigner); ok {
		url, err := signer.SignURL(ctx, key, r.expiry)
		if err != nil {
			return "", domain.NewStoreError(domain.ErrBlobRead, "get", key, err)
		}
		return url, nil
	}

	if r.links == nil {
		return "", domain.NewStoreError(domain.ErrBlobRead, "get", key, errors.New("no link signer configured"))
	}
	url, err := r.links.Sign(key, r.expiry)
	if err != nil {
		return "", domain.NewStoreError(domain.ErrBlobRead, "get", key, err)
	}
	return url, nil
}

func (r *blobRepository) Remove(ctx context.Context, key string) error {
	if err := r.store.Delete(ctx, key); err != nil {
		return domain.NewStoreError(domain.ErrBlobWrite, "remove", key, err)
	}
	return nil
}

func (r *blobRepository) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	rc, err := r.store.Open(ctx, key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.NewStoreError(domain.ErrBlobNotFound, "open", key, err)
		}
		return nil, domain.NewStoreError(domain.ErrBlobRead, "open", key, err)
	}
	return rc, nil
}
