package local_fs

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/haierkeys/pin-notes-service/pkg/fileurl"

	"github.com/pkg/errors"
)

type Config struct {
	SavePath   string `yaml:"save-path" default:"storage/uploads"`
	CustomPath string `yaml:"custom-path"`
}

// LocalFS 本地文件系统存储，访问链接由服务自身签发
type LocalFS struct {
	Config *Config
}

func NewClient(conf *Config) (*LocalFS, error) {
	if conf == nil || conf.SavePath == "" {
		return nil, errors.New("local_fs: save-path is required")
	}
	return &LocalFS{Config: conf}, nil
}

func (p *LocalFS) fullPath(fileKey string) string {
	return filepath.Join(p.Config.SavePath, filepath.FromSlash(fileurl.ObjectKey(p.Config.CustomPath, fileKey)))
}

// SendContent 写入文件，已存在时直接覆盖
func (p *LocalFS) SendContent(ctx context.Context, fileKey string, content []byte, contentType string) (string, error) {
	dst := p.fullPath(fileKey)
	if err := os.MkdirAll(filepath.Dir(dst), 0754); err != nil {
		return "", errors.Wrap(err, "local_fs")
	}

	// 先写临时文件再重命名，避免读到写了一半的图片
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return "", errors.Wrap(err, "local_fs")
	}
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", errors.Wrap(err, "local_fs")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", errors.Wrap(err, "local_fs")
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return "", errors.Wrap(err, "local_fs")
	}
	return dst, nil
}

func (p *LocalFS) Exists(ctx context.Context, fileKey string) (bool, error) {
	info, err := os.Stat(p.fullPath(fileKey))
	if err == nil {
		return !info.IsDir(), nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Wrap(err, "local_fs")
}

func (p *LocalFS) Open(ctx context.Context, fileKey string) (io.ReadCloser, error) {
	f, err := os.Open(p.fullPath(fileKey))
	if err != nil {
		return nil, errors.Wrap(err, "local_fs")
	}
	return f, nil
}

func (p *LocalFS) Delete(ctx context.Context, fileKey string) error {
	err := os.Remove(p.fullPath(fileKey))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "local_fs")
	}
	return nil
}
