// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/haierkeys/pin-notes-service/internal/dao"
	"github.com/haierkeys/pin-notes-service/internal/service"
	pkgapp "github.com/haierkeys/pin-notes-service/pkg/app"
	"github.com/haierkeys/pin-notes-service/pkg/storage"
	"github.com/haierkeys/pin-notes-service/pkg/util"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// 记录存储类型
const (
	RecordStoreGraphQL  = "graphql"
	RecordStoreDatabase = "database"
	RecordStoreRedis    = "redis"
)

// AppConfig 应用配置
type AppConfig struct {
	File        string            `yaml:"-"` // 配置文件路径，不序列化
	Server      ServerConfig      `yaml:"server"`
	Log         LogConfig         `yaml:"log"`
	App         AppSettings       `yaml:"app"`
	Security    SecurityConfig    `yaml:"security"`
	Auth        AuthConfig        `yaml:"auth"`
	RecordStore RecordStoreConfig `yaml:"record-store"`
	BlobStore   BlobStoreConfig   `yaml:"blob-store"`
	Tracer      TracerConfig      `yaml:"tracer"`
}

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别，参见 zapcore.ParseLevel
	Level string `yaml:"level" default:"info"`
	// File 日志文件路径，为空时只输出到 stderr
	File string `yaml:"file" default:"storage/logs/log.log"`
	// Production 是否启用 JSON 输出
	Production bool `yaml:"production" default:"true"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	// RunMode 运行模式
	RunMode string `yaml:"run-mode" default:"release"`
	// HttpPort HTTP 端口
	HttpPort string `yaml:"http-port" default:":9000"`
	// ReadTimeout 读取超时（秒）
	ReadTimeout int `yaml:"read-timeout" default:"60"`
	// WriteTimeout 写入超时（秒）
	WriteTimeout int `yaml:"write-timeout" default:"60"`
	// PrivateHttpListen 私有 HTTP 监听地址，为空时不启动
	PrivateHttpListen string `yaml:"private-http-listen" default:":9001"`
	// PublicURL 对外访问地址，用于生成本服务代理的图片链接，为空时使用相对链接
	PublicURL string `yaml:"public-url"`
}

// AppSettings 笔记看板设置
type AppSettings struct {
	// DefaultContextTimeout 默认上下文超时时间（秒）
	DefaultContextTimeout int `yaml:"default-context-timeout" default:"60"`
	// ImageResolveConcurrency 列表时并发解析图片链接的上限
	ImageResolveConcurrency int `yaml:"image-resolve-concurrency" default:"8"`
	// MissingImagePolicy 图片对象不存在时的策略：fail 整个列表失败，omit 不显示图片
	MissingImagePolicy string `yaml:"missing-image-policy" default:"fail"`
	// DeleteRollback 远端删除失败时是否恢复本地集合
	DeleteRollback bool `yaml:"delete-rollback"`
	// RefreshSpec 定时刷新集合的 cron 表达式，为空时不刷新
	RefreshSpec string `yaml:"refresh-spec" default:"@every 10m"`
	// UploadMaxSize 上传图片大小上限（字节）
	UploadMaxSize int64 `yaml:"upload-max-size" default:"10485760"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	AuthTokenKey string `yaml:"auth-token-key" default:"pin-notes-Auth-Token"`
	TokenExpiry  string `yaml:"token-expiry" default:"7d"` // 支持格式：7d（天）、24h（小时）、30m（分钟）
	// BlobLinkKey 本服务代理图片链接的签名密钥
	BlobLinkKey string `yaml:"blob-link-key" default:"pin-notes-Blob-Link"`
	// SignInLimitCapacity 登录接口令牌桶容量
	SignInLimitCapacity int64 `yaml:"sign-in-limit-capacity" default:"5"`
	// SignInLimitInterval 登录接口令牌补充间隔
	SignInLimitInterval string `yaml:"sign-in-limit-interval" default:"12s"`
}

// UserCredential 可登录用户，密码以 bcrypt 哈希保存（pin-notes hash-password 生成）
type UserCredential struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password-hash"`
}

// AuthConfig 登录配置
type AuthConfig struct {
	Users []UserCredential `yaml:"users"`
}

// GraphQLConfig GraphQL 记录存储配置
type GraphQLConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api-key"`
	Token    string `yaml:"token"`
	Timeout  string `yaml:"timeout" default:"30s"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// Type 数据库类型
	Type string `yaml:"type" default:"sqlite"`
	// Path SQLite 数据库文件路径
	Path string `yaml:"path" default:"storage/database/db.sqlite3"`
	// UserName 用户名
	UserName string `yaml:"username"`
	// Password 密码
	Password string `yaml:"password"`
	// Host 主机
	Host string `yaml:"host"`
	// Name 数据库名
	Name string `yaml:"name"`
	// TablePrefix 表前缀
	TablePrefix string `yaml:"table-prefix" default:"pin_"`
	// AutoMigrate 是否启用自动迁移
	AutoMigrate bool `yaml:"auto-migrate" default:"true"`
	// Charset 字符集
	Charset string `yaml:"charset" default:"utf8mb4"`
	// ParseTime 是否解析时间
	ParseTime bool `yaml:"parse-time" default:"true"`
	// MaxIdleConns 最大闲置连接数，默认 10
	MaxIdleConns int `yaml:"max-idle-conns" default:"10"`
	// MaxOpenConns 最大打开连接数，默认 100
	MaxOpenConns int `yaml:"max-open-conns" default:"100"`
	// ConnMaxLifetime 连接最大生命周期，默认 30m
	ConnMaxLifetime string `yaml:"conn-max-lifetime" default:"30m"`
	// ConnMaxIdleTime 空闲连接最大生命周期，默认 10m
	ConnMaxIdleTime string `yaml:"conn-max-idle-time" default:"10m"`
}

// RedisConfig Redis 记录存储配置
type RedisConfig struct {
	Addr        string `yaml:"addr" default:"127.0.0.1:6379"`
	Password    string `yaml:"password"`
	DB          int    `yaml:"db"`
	KeyPrefix   string `yaml:"key-prefix" default:"pin-notes:"`
	DialTimeout string `yaml:"dial-timeout" default:"5s"`
}

// RecordStoreConfig 记录存储配置
type RecordStoreConfig struct {
	// Type graphql / database / redis
	Type     string         `yaml:"type" default:"graphql"`
	GraphQL  GraphQLConfig  `yaml:"graphql"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
}

// BlobStoreConfig 图片存储配置
type BlobStoreConfig struct {
	storage.Config `yaml:",inline"`
	// URLExpiry 图片访问链接有效期
	URLExpiry string `yaml:"url-expiry" default:"15m"`
}

// TracerConfig 请求追踪配置
type TracerConfig struct {
	// Enabled 是否启用追踪
	Enabled bool `yaml:"enabled" default:"true"`
	// Header 追踪 ID 请求头名称，默认 X-Trace-ID
	Header string `yaml:"header" default:"X-Trace-ID"`
}

// envPattern only matches the braced form so bcrypt hashes ("$2a$10$...")
// pass through untouched.
var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

func expandEnv(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(m string) string {
		return os.Getenv(m[2 : len(m)-1])
	})
}

// LoadConfig 从文件加载配置
// 同目录下的 .env 会先载入环境变量，配置内容中的 ${VAR} 在解析前展开
// 返回配置实例和配置文件的绝对路径
func LoadConfig(f string) (*AppConfig, string, error) {
	realpath, err := filepath.Abs(f)
	if err != nil {
		return nil, "", err
	}
	realpath = filepath.Clean(realpath)

	c := new(AppConfig)
	c.File = realpath

	// 设置默认值
	if err := defaults.Set(c); err != nil {
		return nil, realpath, errors.Wrap(err, "set default config failed")
	}

	file, err := os.ReadFile(realpath)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "read config file failed")
	}

	envFile := filepath.Join(filepath.Dir(realpath), ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, realpath, errors.Wrap(err, "load .env failed")
		}
	}

	err = yaml.Unmarshal([]byte(expandEnv(string(file))), c)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "parse config file failed")
	}

	// 再次设置默认值，以填充 YAML 中存在但值为空的字段
	// defaults.Set 只有在字段为该类型的零值时才会填充
	if err := defaults.Set(c); err != nil {
		return nil, realpath, errors.Wrap(err, "re-set default config failed")
	}

	return c, realpath, nil
}

// Save 保存配置到文件
func (c *AppConfig) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config failed")
	}

	err = os.WriteFile(c.File, data, 0644)
	if err != nil {
		return errors.Wrap(err, "write config file failed")
	}

	return nil
}

// GetTokenExpiry 获取 Token 过期时间
func (c *AppConfig) GetTokenExpiry() time.Duration {
	return util.MustParseDuration(c.Security.TokenExpiry, 7*24*time.Hour)
}

// GetContextTimeout 获取请求上下文超时时间
func (c *AppConfig) GetContextTimeout() time.Duration {
	if c.App.DefaultContextTimeout <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.App.DefaultContextTimeout) * time.Second
}

// GetBlobURLExpiry 获取图片链接有效期
func (c *AppConfig) GetBlobURLExpiry() time.Duration {
	return util.MustParseDuration(c.BlobStore.URLExpiry, 15*time.Minute)
}

// GetSignInLimitInterval 获取登录限流的令牌补充间隔
func (c *AppConfig) GetSignInLimitInterval() time.Duration {
	return util.MustParseDuration(c.Security.SignInLimitInterval, 12*time.Second)
}

// GetTokenConfig 获取会话令牌配置
func (c *AppConfig) GetTokenConfig() pkgapp.TokenConfig {
	return pkgapp.TokenConfig{
		SecretKey: c.Security.AuthTokenKey,
		Issuer:    pkgapp.DefaultTokenIssuer,
		Expiry:    c.GetTokenExpiry(),
	}
}

// GetServiceConfig 提取 Service 层需要的配置
func (c *AppConfig) GetServiceConfig() *service.ServiceConfig {
	users := make(map[string]string, len(c.Auth.Users))
	for _, u := range c.Auth.Users {
		if u.Username != "" && u.PasswordHash != "" {
			users[u.Username] = u.PasswordHash
		}
	}
	return &service.ServiceConfig{
		App: service.AppServiceConfig{
			ImageResolveConcurrency: c.App.ImageResolveConcurrency,
			MissingImagePolicy:      c.App.MissingImagePolicy,
			DeleteRollback:          c.App.DeleteRollback,
			UploadMaxSize:           c.App.UploadMaxSize,
		},
		Auth: service.AuthServiceConfig{Users: users},
	}
}

// GetDatabaseConfig 获取 DAO 层数据库配置
func (c *AppConfig) GetDatabaseConfig() dao.DatabaseConfig {
	d := c.RecordStore.Database
	return dao.DatabaseConfig{
		Type:            d.Type,
		Path:            d.Path,
		UserName:        d.UserName,
		Password:        d.Password,
		Host:            d.Host,
		Name:            d.Name,
		TablePrefix:     d.TablePrefix,
		AutoMigrate:     d.AutoMigrate,
		Charset:         d.Charset,
		ParseTime:       d.ParseTime,
		MaxIdleConns:    d.MaxIdleConns,
		MaxOpenConns:    d.MaxOpenConns,
		ConnMaxLifetime: d.ConnMaxLifetime,
		ConnMaxIdleTime: d.ConnMaxIdleTime,
		RunMode:         c.Server.RunMode,
	}
}

// GetGraphQLConfig 获取 GraphQL 记录存储配置
func (c *AppConfig) GetGraphQLConfig() dao.GraphQLConfig {
	g := c.RecordStore.GraphQL
	return dao.GraphQLConfig{
		Endpoint: g.Endpoint,
		APIKey:   g.APIKey,
		Token:    g.Token,
		Timeout:  util.MustParseDuration(g.Timeout, 30*time.Second),
	}
}

// GetRedisConfig 获取 Redis 记录存储配置
func (c *AppConfig) GetRedisConfig() dao.RedisConfig {
	r := c.RecordStore.Redis
	return dao.RedisConfig{
		Addr:        r.Addr,
		Password:    r.Password,
		DB:          r.DB,
		KeyPrefix:   r.KeyPrefix,
		DialTimeout: util.MustParseDuration(r.DialTimeout, 5*time.Second),
	}
}

// Validate 检查配置中无法通过默认值修正的错误
func (c *AppConfig) Validate() error {
	switch c.RecordStore.Type {
	case RecordStoreGraphQL:
		if c.RecordStore.GraphQL.Endpoint == "" {
			return errors.New("record-store.graphql.endpoint is required")
		}
	case RecordStoreDatabase, RecordStoreRedis:
	default:
		return errors.Errorf("unsupported record-store.type %q", c.RecordStore.Type)
	}
	if !storage.StorageTypeMap[c.BlobStore.Type] {
		return errors.Errorf("unsupported blob-store.type %q", c.BlobStore.Type)
	}
	switch c.App.MissingImagePolicy {
	case service.MissingImageFail, service.MissingImageOmit:
	default:
		return errors.Errorf("unsupported app.missing-image-policy %q", c.App.MissingImagePolicy)
	}
	if len(c.Auth.Users) == 0 {
		return errors.New("auth.users must declare at least one user")
	}
	return nil
}
