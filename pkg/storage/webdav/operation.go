package webdav

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"path"

	"github.com/haierkeys/pin-notes-service/pkg/fileurl"

	"github.com/pkg/errors"
	"github.com/studio-b12/gowebdav"
)

func (w *WebDAV) key(fileKey string) string {
	return "/" + fileurl.ObjectKey(w.Config.CustomPath, fileKey)
}

// SendContent 将二进制内容上传到 WebDAV 服务器，同名文件直接覆盖
func (w *WebDAV) SendContent(ctx context.Context, fileKey string, content []byte, contentType string) (string, error) {
	key := w.key(fileKey)
	if dir := path.Dir(key); dir != "/" {
		if err := w.Client.MkdirAll(dir, 0755); err != nil {
			return "", errors.Wrap(err, "webdav")
		}
	}
	if err := w.Client.WriteStream(key, bytes.NewReader(content), 0644); err != nil {
		return "", errors.Wrap(err, "webdav")
	}
	return key, nil
}

func (w *WebDAV) Exists(ctx context.Context, fileKey string) (bool, error) {
	info, err := w.Client.Stat(w.key(fileKey))
	if err == nil {
		return !info.IsDir(), nil
	}
	if gowebdav.IsErrNotFound(err) {
		return false, nil
	}
	return false, errors.Wrap(err, "webdav")
}

func (w *WebDAV) Open(ctx context.Context, fileKey string) (io.ReadCloser, error) {
	rc, err := w.Client.ReadStream(w.key(fileKey))
	if err != nil {
		if gowebdav.IsErrNotFound(err) {
			return nil, errors.Wrapf(fs.ErrNotExist, "webdav: %s", fileKey)
		}
		return nil, errors.Wrap(err, "webdav")
	}
	return rc, nil
}

func (w *WebDAV) Delete(ctx context.Context, fileKey string) error {
	err := w.Client.Remove(w.key(fileKey))
	if err != nil && !gowebdav.IsErrNotFound(err) {
		return errors.Wrap(err, "webdav")
	}
	return nil
}
