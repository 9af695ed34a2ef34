package storage

import (
	"context"
	"io"
	"time"

	"github.com/haierkeys/pin-notes-service/pkg/storage/aliyun_oss"
	"github.com/haierkeys/pin-notes-service/pkg/storage/aws_s3"
	"github.com/haierkeys/pin-notes-service/pkg/storage/cloudflare_r2"
	"github.com/haierkeys/pin-notes-service/pkg/storage/local_fs"
	"github.com/haierkeys/pin-notes-service/pkg/storage/minio"
	"github.com/haierkeys/pin-notes-service/pkg/storage/webdav"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Type = string
type CloudType = Type

const OSS CloudType = "oss"
const R2 CloudType = "r2"
const S3 CloudType = "s3"
const LOCAL Type = "localfs"
const MinIO CloudType = "minio"
const WebDAV CloudType = "webdav"

var StorageTypeMap = map[Type]bool{
	OSS:    true,
	R2:     true,
	S3:     true,
	LOCAL:  true,
	MinIO:  true,
	WebDAV: true,
}

// CloudStorageTypeMap 可以直接签发访问链接的存储类型
var CloudStorageTypeMap = map[Type]bool{
	OSS:   true,
	R2:    true,
	S3:    true,
	MinIO: true,
}

// ErrInvalidStorageType 不支持的存储类型
var ErrInvalidStorageType = errors.New("storage: invalid storage type")

// Config Unified storage configuration
type Config struct {
	Type Type `yaml:"type" default:"localfs"`

	// Common settings
	CustomPath string `yaml:"custom-path"`

	// Cloud Storage (S3/OSS/MinIO/R2)
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	BucketName      string `yaml:"bucket-name"`
	AccessKeyID     string `yaml:"access-key-id"`
	AccessKeySecret string `yaml:"access-key-secret"`
	AccountID       string `yaml:"account-id"` // Cloudflare R2 specific

	// WebDAV
	User     string `yaml:"user"`
	Password string `yaml:"password"`

	// Local FS
	SavePath string `yaml:"save-path" default:"storage/uploads"`
}

// Storager 对象存储的统一操作
// Open returns an error wrapping fs.ErrNotExist when the key is missing;
// Delete of a missing key is not an error.
type Storager interface {
	SendContent(ctx context.Context, fileKey string, content []byte, contentType string) (string, error)
	Exists(ctx context.Context, fileKey string) (bool, error)
	Open(ctx context.Context, fileKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, fileKey string) error
}

// URLSigner is implemented by backends that can hand out time-limited
// links the browser fetches directly from the provider.
type URLSigner interface {
	SignURL(ctx context.Context, fileKey string, expiry time.Duration) (string, error)
}

// Option 配置选项函数类型
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger 设置日志器
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func NewClient(config *Config, opts ...Option) (Storager, error) {
	if config == nil {
		return nil, ErrInvalidStorageType
	}

	o := &options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}

	switch config.Type {
	case LOCAL:
		return local_fs.NewClient(&local_fs.Config{
			SavePath:   config.SavePath,
			CustomPath: config.CustomPath,
		})
	case OSS:
		return aliyun_oss.NewClient(&aliyun_oss.Config{
			Endpoint:        config.Endpoint,
			BucketName:      config.BucketName,
			AccessKeyID:     config.AccessKeyID,
			AccessKeySecret: config.AccessKeySecret,
			CustomPath:      config.CustomPath,
		})
	case R2:
		return cloudflare_r2.NewClient(&cloudflare_r2.Config{
			AccountID:       config.AccountID,
			BucketName:      config.BucketName,
			AccessKeyID:     config.AccessKeyID,
			AccessKeySecret: config.AccessKeySecret,
			CustomPath:      config.CustomPath,
		}, cloudflare_r2.WithLogger(o.logger))
	case S3:
		return aws_s3.NewClient(&aws_s3.Config{
			Endpoint:        config.Endpoint,
			Region:          config.Region,
			BucketName:      config.BucketName,
			AccessKeyID:     config.AccessKeyID,
			AccessKeySecret: config.AccessKeySecret,
			CustomPath:      config.CustomPath,
		}, aws_s3.WithLogger(o.logger))
	case MinIO:
		return minio.NewClient(&minio.Config{
			Endpoint:        config.Endpoint,
			Region:          config.Region,
			BucketName:      config.BucketName,
			AccessKeyID:     config.AccessKeyID,
			AccessKeySecret: config.AccessKeySecret,
			CustomPath:      config.CustomPath,
		}, minio.WithLogger(o.logger))
	case WebDAV:
		return webdav.NewClient(&webdav.Config{
			Endpoint:   config.Endpoint,
			User:       config.User,
			Password:   config.Password,
			CustomPath: config.CustomPath,
		})
	}
	return nil, errors.Wrapf(ErrInvalidStorageType, "type %q", config.Type)
}
