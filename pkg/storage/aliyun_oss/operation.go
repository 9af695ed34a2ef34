package aliyun_oss

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"net/http"
	"time"

	"github.com/haierkeys/pin-notes-service/pkg/fileurl"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/pkg/errors"
)

func (p *OSS) key(fileKey string) string {
	return fileurl.ObjectKey(p.Config.CustomPath, fileKey)
}

func isNotFound(err error) bool {
	var se oss.ServiceError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusNotFound
	}
	return false
}

// SendContent 上传内容，同名对象直接覆盖
// The OSS SDK has no context support; ctx is accepted for interface parity.
func (p *OSS) SendContent(ctx context.Context, fileKey string, content []byte, contentType string) (string, error) {
	key := p.key(fileKey)
	var opts []oss.Option
	if contentType != "" {
		opts = append(opts, oss.ContentType(contentType))
	}
	if err := p.Bucket.PutObject(key, bytes.NewReader(content), opts...); err != nil {
		return "", errors.Wrap(err, "aliyun_oss")
	}
	return key, nil
}

func (p *OSS) Exists(ctx context.Context, fileKey string) (bool, error) {
	ok, err := p.Bucket.IsObjectExist(p.key(fileKey))
	if err != nil {
		return false, errors.Wrap(err, "aliyun_oss")
	}
	return ok, nil
}

func (p *OSS) Open(ctx context.Context, fileKey string) (io.ReadCloser, error) {
	rc, err := p.Bucket.GetObject(p.key(fileKey))
	if err != nil {
		if isNotFound(err) {
			return nil, errors.Wrapf(fs.ErrNotExist, "aliyun_oss: %s", fileKey)
		}
		return nil, errors.Wrap(err, "aliyun_oss")
	}
	return rc, nil
}

// SignURL 生成带有效期的签名下载链接
func (p *OSS) SignURL(ctx context.Context, fileKey string, expiry time.Duration) (string, error) {
	url, err := p.Bucket.SignURL(p.key(fileKey), oss.HTTPGet, int64(expiry/time.Second))
	if err != nil {
		return "", errors.Wrap(err, "aliyun_oss")
	}
	return url, nil
}

func (p *OSS) Delete(ctx context.Context, fileKey string) error {
	if err := p.Bucket.DeleteObject(p.key(fileKey)); err != nil {
		return errors.Wrap(err, "aliyun_oss")
	}
	return nil
}
