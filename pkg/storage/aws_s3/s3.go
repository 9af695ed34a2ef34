package aws_s3

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/transfermanager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Config struct {
	Endpoint        string `yaml:"endpoint"` // 为空时使用 AWS 官方地址
	Region          string `yaml:"region"`
	BucketName      string `yaml:"bucket-name"`
	AccessKeyID     string `yaml:"access-key-id"`
	AccessKeySecret string `yaml:"access-key-secret"`
	CustomPath      string `yaml:"custom-path"`
	UsePathStyle    bool   `yaml:"use-path-style"`
}

// S3 is also the engine behind the MinIO and R2 backends, which only differ
// in how the underlying client is addressed.
type S3 struct {
	S3Client        *s3.Client
	TransferManager *transfermanager.Client
	Config          *Config
	logger          *zap.Logger
	name            string
	clientOpts      []func(*s3.Options)
}

// Option 配置选项函数类型
type Option func(*S3)

// WithLogger 设置日志器
func WithLogger(logger *zap.Logger) Option {
	return func(s *S3) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithName 设置错误信息中的后端名称
func WithName(name string) Option {
	return func(s *S3) {
		s.name = name
	}
}

// WithClientOptions 追加 s3 客户端选项（自定义 endpoint、path style 等）
func WithClientOptions(fns ...func(*s3.Options)) Option {
	return func(s *S3) {
		s.clientOpts = append(s.clientOpts, fns...)
	}
}

// NewClient 创建 S3 存储实例
func NewClient(conf *Config, opts ...Option) (*S3, error) {
	p := &S3{
		Config: conf,
		logger: zap.NewNop(),
		name:   "aws_s3",
	}
	for _, opt := range opts {
		opt(p)
	}

	region := conf.Region
	if region == "" {
		region = "us-east-1"
	}

	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(conf.AccessKeyID, conf.AccessKeySecret, "")),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, errors.Wrap(err, p.name)
	}

	clientOpts := append([]func(*s3.Options){func(o *s3.Options) {
		if conf.Endpoint != "" {
			o.BaseEndpoint = aws.String(conf.Endpoint)
		}
		o.UsePathStyle = conf.UsePathStyle
	}}, p.clientOpts...)

	p.S3Client = s3.NewFromConfig(cfg, clientOpts...)
	p.TransferManager = transfermanager.New(p.S3Client)
	return p, nil
}
