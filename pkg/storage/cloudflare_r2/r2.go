package cloudflare_r2

import (
	"fmt"

	"github.com/haierkeys/pin-notes-service/pkg/storage/aws_s3"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Config struct {
	AccountID       string `yaml:"account-id"`
	BucketName      string `yaml:"bucket-name"`
	AccessKeyID     string `yaml:"access-key-id"`
	AccessKeySecret string `yaml:"access-key-secret"`
	CustomPath      string `yaml:"custom-path"`
}

type R2 struct {
	*aws_s3.S3
}

// Option configuration option function type
// Option 配置选项函数类型
type Option = aws_s3.Option

// WithLogger sets the logger
// WithLogger 设置日志器
func WithLogger(logger *zap.Logger) Option {
	return aws_s3.WithLogger(logger)
}

// Endpoint returns the account scoped R2 endpoint.
func Endpoint(accountID string) string {
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID)
}

// NewClient creates an R2 storage instance
// NewClient 创建 R2 存储实例
func NewClient(conf *Config, opts ...Option) (*R2, error) {
	if conf.AccountID == "" {
		return nil, errors.New("cloudflare_r2: account-id is required")
	}
	client, err := aws_s3.NewClient(&aws_s3.Config{
		Endpoint:        Endpoint(conf.AccountID),
		Region:          "auto",
		BucketName:      conf.BucketName,
		AccessKeyID:     conf.AccessKeyID,
		AccessKeySecret: conf.AccessKeySecret,
		CustomPath:      conf.CustomPath,
	}, append([]Option{aws_s3.WithName("cloudflare_r2")}, opts...)...)
	if err != nil {
		return nil, err
	}
	return &R2{S3: client}, nil
}
