package minio

import (
	"github.com/haierkeys/pin-notes-service/pkg/storage/aws_s3"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Config struct {
	BucketName      string `yaml:"bucket-name"`
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access-key-id"`
	AccessKeySecret string `yaml:"access-key-secret"`
	CustomPath      string `yaml:"custom-path"`
}

// MinIO 通过 S3 兼容协议访问，强制 path style
type MinIO struct {
	*aws_s3.S3
}

// Option 配置选项函数类型
type Option = aws_s3.Option

// WithLogger 设置日志器
func WithLogger(logger *zap.Logger) Option {
	return aws_s3.WithLogger(logger)
}

// NewClient 创建 MinIO 存储实例
func NewClient(conf *Config, opts ...Option) (*MinIO, error) {
	if conf.Endpoint == "" {
		return nil, errors.New("minio: endpoint is required")
	}
	client, err := aws_s3.NewClient(&aws_s3.Config{
		Endpoint:        conf.Endpoint,
		Region:          conf.Region,
		BucketName:      conf.BucketName,
		AccessKeyID:     conf.AccessKeyID,
		AccessKeySecret: conf.AccessKeySecret,
		CustomPath:      conf.CustomPath,
		UsePathStyle:    true,
	}, append([]Option{aws_s3.WithName("minio")}, opts...)...)
	if err != nil {
		return nil, err
	}
	return &MinIO{S3: client}, nil
}
